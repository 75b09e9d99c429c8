package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ISOLayout is the zero-padded UTC layout every persisted timestamp uses
// ("2026-10-15T09:00:00.000Z"). Due-date scans compare these strings
// lexicographically, which only matches chronological order because the
// layout is fixed-width.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

const DateLayout = "2006-01-02"

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	DateLayout,
}

// FormatISO renders t in UTC using ISOLayout.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ParseISO parses a persisted timestamp. Zoned values keep their offset;
// values without a zone (including plain dates) are read in loc.
func ParseISO(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("parse iso time: empty value")
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("parse iso time: unsupported format %q", s)
}

// ParseClock parses an "HH:mm" wall-clock time.
func ParseClock(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("parse clock %q: expected HH:mm", s)
	}

	hour, err = strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("parse clock %q: invalid hour", s)
	}

	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("parse clock %q: invalid minute", s)
	}

	return hour, minute, nil
}

// AtClock returns the given day at hour:minute in loc, seconds zeroed.
func AtClock(day time.Time, hour, minute int, loc *time.Location) time.Time {
	d := day.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
