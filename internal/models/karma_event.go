package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Karma event actions.
const (
	KarmaActionDaily         = "daily"
	KarmaActionReferral      = "referral"
	KarmaActionJoinChallenge = "join_challenge"
	KarmaActionChallengeWin  = "challenge_win"
	KarmaActionHabitComplete = "habit_complete"
	KarmaActionShopBuy       = "shop_buy"
)

// KarmaEvent is the append-only audit trail of every credit; Amount is the
// post-multiplier value actually applied.
type KarmaEvent struct {
	bun.BaseModel `bun:"table:karma_event"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	Amount        int       `bun:"amount" json:"amount"`
	Action        string    `bun:"action" json:"action"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

type TotalKarma struct {
	UserID     int64 `json:"user_id"`
	TotalKarma int   `json:"total_karma"`
}
