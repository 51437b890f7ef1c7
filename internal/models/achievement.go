package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Achievement rows are append-only; nothing mutates or deletes them.
type Achievement struct {
	bun.BaseModel `bun:"table:achievement"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	Code          string    `bun:"code" json:"code"`
	Title         string    `bun:"title" json:"title"`
	Description   string    `bun:"description" json:"description"`
	EarnedAt      time.Time `bun:"earned_at,default:current_timestamp" json:"earned_at"`
}
