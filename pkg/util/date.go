package util

import (
	"strconv"
	"time"
)

const dayLayout = "2006-01-02"

// ParseDate accepts the trading-day form (2006-01-02), RFC3339, or unix
// seconds. Returns (t, true) if any form parsed.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dayLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseDateDefault parses a date or returns def when empty or invalid.
func ParseDateDefault(s string, def time.Time) time.Time {
	if t, ok := ParseDate(s); ok {
		return t
	}
	return def
}

// TruncateToDay drops the intraday component in UTC. Daily bars are keyed by
// this value, so stores and lookups must agree on it.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDay renders the canonical trading-day form.
func FormatDay(t time.Time) string {
	return t.UTC().Format(dayLayout)
}
