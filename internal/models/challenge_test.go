package models

import (
	"reflect"
	"testing"
	"time"
)

func participant(userID int64, progress int) *ChallengeParticipant {
	return &ChallengeParticipant{UserID: userID, Progress: progress}
}

func TestComputeWinners(t *testing.T) {
	tests := []struct {
		name         string
		participants []*ChallengeParticipant
		target       int
		want         []int64
	}{
		{
			"nobody reached the target",
			[]*ChallengeParticipant{participant(1, 3), participant(2, 0)},
			5,
			[]int64{},
		},
		{
			"winners kept in join order",
			[]*ChallengeParticipant{participant(3, 7), participant(1, 2), participant(2, 5)},
			5,
			[]int64{3, 2},
		},
		{
			"overshoot counts the same as exact",
			[]*ChallengeParticipant{participant(1, 5), participant(2, 500)},
			5,
			[]int64{1, 2},
		},
		{
			"zero target yields no winners",
			[]*ChallengeParticipant{participant(1, 10)},
			0,
			[]int64{},
		},
		{
			"no participants",
			nil,
			5,
			[]int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeWinners(tt.participants, tt.target)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ComputeWinners() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitPrizePool(t *testing.T) {
	tests := []struct {
		name          string
		pool          int
		commissionPct int
		winners       int
		wantNet       int
		wantPerWinner int
	}{
		{"pool 100, two winners", 100, 15, 2, 85, 42},
		{"pool 100, one winner", 100, 15, 1, 85, 85},
		{"pool 100, three winners floor", 100, 15, 3, 85, 28},
		{"no winners keeps per-winner zero", 100, 15, 0, 85, 0},
		{"empty pool", 0, 15, 2, 0, 0},
		{"commission floors the net", 7, 15, 1, 5, 5},
		{"zero commission", 90, 0, 3, 90, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, per := SplitPrizePool(tt.pool, tt.commissionPct, tt.winners)
			if net != tt.wantNet || per != tt.wantPerWinner {
				t.Errorf("SplitPrizePool(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.pool, tt.commissionPct, tt.winners, net, per, tt.wantNet, tt.wantPerWinner)
			}
			if tt.winners > 0 && per*tt.winners > net {
				t.Errorf("payouts %d exceed net pool %d", per*tt.winners, net)
			}
		})
	}
}

func TestChallengeFinalizeEligible(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name     string
		deadline *time.Time
		winners  []int64
		want     bool
	}{
		{"no winners, deadline ahead", &future, []int64{}, false},
		{"no winners, no deadline", nil, []int64{}, false},
		{"no winners, deadline passed", &past, []int64{}, true},
		{"winner before deadline", &future, []int64{7}, true},
		{"winner without deadline", nil, []int64{7}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Challenge{Status: ChallengeStatusActive, Deadline: tt.deadline}
			if got := c.FinalizeEligible(tt.winners, now); got != tt.want {
				t.Errorf("FinalizeEligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChallengeDeadlinePassed(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	c := &Challenge{}
	if c.DeadlinePassed(now) {
		t.Error("challenge without deadline never expires")
	}
	c.Deadline = &after
	if c.DeadlinePassed(now) {
		t.Error("future deadline must not be passed")
	}
	c.Deadline = &before
	if !c.DeadlinePassed(now) {
		t.Error("past deadline must be passed")
	}
	c.Deadline = &now
	if !c.DeadlinePassed(now) {
		t.Error("deadline equal to now counts as passed")
	}
}

func TestChallengeActive(t *testing.T) {
	c := &Challenge{Status: ChallengeStatusActive}
	if !c.Active() {
		t.Error("active challenge reported inactive")
	}
	c.Status = ChallengeStatusFinished
	if c.Active() {
		t.Error("finished challenge reported active")
	}
}
