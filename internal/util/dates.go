package util

import (
	"errors"
	"strings"
	"time"
)

const DateOnly = "2006-01-02"

var ErrBadDate = errors.New("date must be RFC3339 or YYYY-MM-DD")

// ParseDate accepts an RFC3339 timestamp or a calendar date (UTC midnight).
// dateOnly reports which form was given.
func ParseDate(s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if t, err = time.Parse(time.RFC3339Nano, s); err == nil {
		return t, false, nil
	}
	if t, err = time.Parse(DateOnly, s); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, ErrBadDate
}

// EndOfDay returns the last millisecond of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// DayBounds returns local midnight of t and the following midnight.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
