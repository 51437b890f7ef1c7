package models

import (
	"testing"
	"time"
)

func TestApplyKarma(t *testing.T) {
	tests := []struct {
		name      string
		karma     int
		level     int
		amount    int
		wantKarma int
		wantLevel int
	}{
		{"no carry", 30, 1, 40, 70, 1},
		{"exact border", 50, 1, 50, 0, 2},
		{"single carry with remainder", 90, 1, 35, 25, 2},
		{"multiple carries", 10, 3, 250, 60, 5},
		{"zero amount", 42, 2, 0, 42, 2},
		{"carry from zero", 0, 1, 100, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			karma, level := ApplyKarma(tt.karma, tt.level, tt.amount)
			if karma != tt.wantKarma || level != tt.wantLevel {
				t.Errorf("ApplyKarma(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.karma, tt.level, tt.amount, karma, level, tt.wantKarma, tt.wantLevel)
			}
			if karma < 0 || karma >= LevelBorder {
				t.Errorf("karma %d out of [0, %d)", karma, LevelBorder)
			}
		})
	}
}

// Total karma is conserved through the carry: score before plus the applied
// amount equals score after.
func TestApplyKarmaConservesScore(t *testing.T) {
	cases := []struct{ karma, level, amount int }{
		{0, 1, 1},
		{99, 1, 1},
		{99, 1, 301},
		{50, 7, 1234},
	}
	for _, c := range cases {
		karma, level := ApplyKarma(c.karma, c.level, c.amount)
		before := KarmaScore(c.karma, c.level)
		after := KarmaScore(karma, level)
		if after != before+c.amount {
			t.Errorf("ApplyKarma(%d, %d, %d): score %d + %d != %d",
				c.karma, c.level, c.amount, before, c.amount, after)
		}
	}
}

func TestPremiumActive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-time.Second)

	tests := []struct {
		name   string
		until  *time.Time
		cached bool
		want   bool
	}{
		{"expiry in future", &future, false, true},
		{"expiry in past overrides stale flag", &past, true, false},
		{"expiry exactly now", &now, true, false},
		{"no expiry, flag set", nil, true, true},
		{"no expiry, flag clear", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PremiumActive(now, tt.until, tt.cached); got != tt.want {
				t.Errorf("PremiumActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKarmaScore(t *testing.T) {
	if got := KarmaScore(0, 1); got != 0 {
		t.Errorf("fresh user score = %d, want 0", got)
	}
	if got := KarmaScore(25, 3); got != 225 {
		t.Errorf("KarmaScore(25, 3) = %d, want 225", got)
	}
	// a higher level always outranks any karma on the level below
	if KarmaScore(0, 2) <= KarmaScore(99, 1) {
		t.Error("level 2 with 0 karma must outrank level 1 with 99 karma")
	}
}
