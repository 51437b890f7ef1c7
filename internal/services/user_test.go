package services

import (
	"context"
	"errors"
	"testing"

	"karmabot/internal/models"
)

func TestLinkReferralGuards(t *testing.T) {
	// both guards fire before any storage access
	service := &ServiceUser{}
	ctx := context.Background()

	err := service.LinkReferral(ctx, &models.User{ID: 7}, 7)
	if !errors.Is(err, ErrSelfReferral) {
		t.Errorf("self referral: got %v, want ErrSelfReferral", err)
	}

	inviter := int64(1)
	err = service.LinkReferral(ctx, &models.User{ID: 7, InviterID: &inviter}, 2)
	if !errors.Is(err, ErrAlreadyReferred) {
		t.Errorf("second referral: got %v, want ErrAlreadyReferred", err)
	}
}

func TestRollDailyRewardBounds(t *testing.T) {
	min, max := 10, 50
	for i := 0; i < 1000; i++ {
		got := rollDailyReward(min, max)
		if got < min || got > max {
			t.Fatalf("rollDailyReward(%d, %d) = %d, out of range", min, max, got)
		}
	}
}

func TestRollDailyRewardDegenerateRange(t *testing.T) {
	if got := rollDailyReward(25, 25); got != 25 {
		t.Errorf("equal bounds = %d, want 25", got)
	}
	if got := rollDailyReward(50, 10); got != 50 {
		t.Errorf("inverted bounds = %d, want min", got)
	}
}
