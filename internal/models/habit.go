package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Habit struct {
	bun.BaseModel `bun:"table:habit"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	Name          string    `bun:"name" json:"name"`
	Target        int       `bun:"target" json:"target"`
	Progress      int       `bun:"progress" json:"progress"`
	IsDone        bool      `bun:"is_done" json:"is_done"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}
