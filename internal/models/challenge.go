package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	ChallengeStatusActive   = "active"
	ChallengeStatusFinished = "finished"
)

type Challenge struct {
	bun.BaseModel `bun:"table:challenge"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	Name          string     `bun:"name" json:"name"`
	Description   string     `bun:"description" json:"description"`
	CreatorID     int64      `bun:"creator_id" json:"creator_id"`
	TargetCount   int        `bun:"target_count" json:"target_count"`
	Deadline      *time.Time `bun:"deadline" json:"deadline"`
	PrizePool     int        `bun:"prize_pool" json:"prize_pool"`
	IsPublic      bool       `bun:"is_public" json:"is_public"`
	Status        string     `bun:"status" json:"status"`
	Winners       []int64    `bun:"winners,array" json:"winners"`
	CreatedAt     time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
	FinishedAt    *time.Time `bun:"finished_at" json:"finished_at"`

	Participants []*ChallengeParticipant `bun:"-" json:"participants,omitempty"`
}

// ChallengeParticipant is one row per (challenge, user); progress updates
// touch only this row, never the whole challenge.
type ChallengeParticipant struct {
	bun.BaseModel `bun:"table:challenge_participant"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	ChallengeID   int64     `bun:"challenge_id" json:"challenge_id"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	Progress      int       `bun:"progress" json:"progress"`
	JoinedAt      time.Time `bun:"joined_at,default:current_timestamp" json:"joined_at"`
}

func (c *Challenge) Active() bool {
	return c.Status == ChallengeStatusActive
}

func (c *Challenge) DeadlinePassed(now time.Time) bool {
	return c.Deadline != nil && !now.Before(*c.Deadline)
}

// FinalizeEligible reports whether the challenge may settle now: someone has
// won, or the deadline ran out. There is no early-finish path, not even for
// the creator.
func (c *Challenge) FinalizeEligible(winners []int64, now time.Time) bool {
	return len(winners) > 0 || c.DeadlinePassed(now)
}

// ComputeWinners returns the ids of every participant whose progress reached
// the target, in join order. Overshoot past the target carries no extra
// weight.
func ComputeWinners(participants []*ChallengeParticipant, targetCount int) []int64 {
	winners := []int64{}
	if targetCount <= 0 {
		return winners
	}
	for _, p := range participants {
		if p.Progress >= targetCount {
			winners = append(winners, p.UserID)
		}
	}
	return winners
}

// SplitPrizePool applies the commission to the pool and splits the remainder
// evenly. Integer floor division on both steps; the rounding remainder is
// kept by the house, not redistributed.
func SplitPrizePool(pool, commissionPct, winnerCount int) (netPool, perWinner int) {
	if pool <= 0 {
		return 0, 0
	}
	netPool = pool * (100 - commissionPct) / 100
	if winnerCount > 0 {
		perWinner = netPool / winnerCount
	}
	return netPool, perWinner
}
