package pkg

import (
	"testing"
	"time"
)

func TestParseReferrerID(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"ref_123", 123},
		{"ref123", 123},
		{"ref_987654321", 987654321},
		{"hello ref_42 world", 42},
		{"", 0},
		{"ref_", 0},
		{"refabc", 0},
		{"start", 0},
	}

	for _, tt := range tests {
		if got := ParseReferrerID(tt.input); got != tt.want {
			t.Errorf("ParseReferrerID(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestHoursUntil(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	if got := HoursUntil(now, now.Add(90*time.Minute)); got != 1 {
		t.Errorf("90 minutes left = %d hours, want 1", got)
	}
	if got := HoursUntil(now, now.Add(24*time.Hour)); got != 24 {
		t.Errorf("one day left = %d hours, want 24", got)
	}
	if got := HoursUntil(now, now.Add(-time.Hour)); got != 0 {
		t.Errorf("past time = %d hours, want 0", got)
	}
	if got := HoursUntil(now, now); got != 0 {
		t.Errorf("now = %d hours, want 0", got)
	}
}
