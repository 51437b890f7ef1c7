package services

import (
	"context"
	"testing"

	"karmabot/internal/models"
)

func TestAddKarmaZeroIsNoOp(t *testing.T) {
	// amount 0 must return before touching locks or storage
	service := &ServiceKarma{}

	user, applied, err := service.AddKarma(context.Background(), 1, 0, models.KarmaActionDaily)
	if err != nil {
		t.Fatalf("AddKarma(0) = %v, want nil", err)
	}
	if user != nil || applied != 0 {
		t.Errorf("AddKarma(0) = (%v, %d), want (nil, 0)", user, applied)
	}
}

func TestAddKarmaRejectsNegative(t *testing.T) {
	service := &ServiceKarma{}

	if _, _, err := service.AddKarma(context.Background(), 1, -5, models.KarmaActionDaily); err == nil {
		t.Error("AddKarma(-5) accepted a negative amount")
	}
}

func TestCreditAmount(t *testing.T) {
	if got := creditAmount(7, false); got != 7 {
		t.Errorf("creditAmount(7, false) = %d, want 7", got)
	}
	if got := creditAmount(7, true); got != 7*PREMIUM_MULTIPLIER {
		t.Errorf("creditAmount(7, true) = %d, want %d", got, 7*PREMIUM_MULTIPLIER)
	}
}

// The multiplier doubles the whole credit before the carry; it never
// compounds per carried level.
func TestCreditAmountAppliedOnceBeforeCarry(t *testing.T) {
	applied := creditAmount(60, true)
	karma, level := models.ApplyKarma(90, 1, applied)

	if applied != 120 {
		t.Fatalf("applied = %d, want 120", applied)
	}
	if karma != 10 || level != 3 {
		t.Errorf("carry result = (%d, %d), want (10, 3)", karma, level)
	}
}
