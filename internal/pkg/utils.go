package pkg

import (
	"regexp"
	"strconv"
	"time"
)

var refCodePattern = regexp.MustCompile(`ref[_]?(\d+)`)

// ParseReferrerID extracts the referrer id from a /start payload like
// "ref123" or "ref_123". Returns 0 when no code is present.
func ParseReferrerID(startText string) int64 {
	m := refCodePattern.FindStringSubmatch(startText)
	if m == nil {
		return 0
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// HoursUntil reports the whole hours left until t, floored at zero.
func HoursUntil(now, t time.Time) int {
	left := t.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(left / time.Hour)
}
