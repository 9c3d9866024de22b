package model

import (
	"errors"
	"time"
)

var errMissingState = errors.New("missing \"state\"")

// TimestampLayout is the wire and metadata format for last-write timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// DayLayout is the date-only layout used for LastSnapshotDay.
const DayLayout = "2006-01-02"

// FormatTimestamp renders t in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts any RFC 3339 timestamp. ok is false for empty or
// unparsable input.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsNewer reports whether timestamp a is strictly newer than b. A present
// timestamp is newer than an absent one; two absent timestamps are never
// newer than each other.
func IsNewer(a, b string) bool {
	ta, okA := ParseTimestamp(a)
	tb, okB := ParseTimestamp(b)
	switch {
	case !okA:
		return false
	case !okB:
		return true
	default:
		return ta.After(tb)
	}
}

// LocalDay returns the calendar day of t in local time.
func LocalDay(t time.Time) string {
	return t.Local().Format(DayLayout)
}
