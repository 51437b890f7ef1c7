package models

import (
	"time"

	"github.com/uptrace/bun"
)

// LevelBorder is the amount of karma that rolls over into one level.
const LevelBorder = 100

type User struct {
	bun.BaseModel  `bun:"table:user"`
	ID             int64      `bun:"id,pk" json:"id"`
	Username       string     `bun:"username" json:"username"`
	FirstName      string     `bun:"first_name" json:"first_name"`
	LastName       string     `bun:"last_name" json:"last_name"`
	Karma          int        `bun:"karma" json:"karma"`
	Level          int        `bun:"level" json:"level"`
	IsPremium      bool       `bun:"is_premium" json:"is_premium"`
	PremiumUntil   *time.Time `bun:"premium_until" json:"premium_until"`
	LastDailyClaim *time.Time `bun:"last_daily_claim" json:"last_daily_claim"`
	InviterID      *int64     `bun:"inviter_id" json:"inviter_id"`
	TotalInvites   int64      `bun:"total_invites" json:"total_invites"`
	CreatedAt      time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time  `bun:"updated_at" json:"updated_at"`

	IsNewUser bool `bun:"-" json:"is_new_user"`
}

// UserFromAuth only use in middleware
type UserFromAuth struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsBot     bool   `json:"is_bot"`
}

// PremiumActive derives the premium state from the stored expiry. When no
// expiry is stored the cached flag stands on its own (externally granted,
// permanent premium).
func PremiumActive(now time.Time, until *time.Time, cached bool) bool {
	if until == nil {
		return cached
	}
	return now.Before(*until)
}

// ApplyKarma adds amount to karma and carries every full border into a level.
// amount is expected to be non-negative; the multiplier is the caller's
// concern and must not be reapplied while carrying.
func ApplyKarma(karma, level, amount int) (int, int) {
	karma += amount
	for karma >= LevelBorder {
		karma -= LevelBorder
		level++
	}
	return karma, level
}

// KarmaScore flattens (level, karma) into a single leaderboard score.
func KarmaScore(karma, level int) int {
	return (level-1)*LevelBorder + karma
}
