package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Shop SKUs carried in the invoice payload.
const (
	SKUPremium30d = "premium_30d"
	SKUKarma100   = "karma_100"
)

type Payment struct {
	bun.BaseModel `bun:"table:payment"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	Amount        int       `bun:"amount" json:"amount"`
	Payload       string    `bun:"payload" json:"payload"`
	Status        string    `bun:"status" json:"status"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}
