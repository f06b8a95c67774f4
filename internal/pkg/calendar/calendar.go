// Package calendar is the single source of truth for bucketing instants into
// business days. Events are stored as UTC instants but reported against
// calendar days in the organization's fixed reporting offset, so every day
// comparison in the codebase must go through DayKey.
package calendar

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var ErrInvalidRange = errors.New("start day must not be after end day")

// DayFormat is the wire format for business day keys.
const DayFormat = "2006-01-02"

var offsetRegex = regexp.MustCompile(`^([+-])(\d{2}):(\d{2})$`)

// Calendar converts instants into business day keys for a fixed UTC offset.
type Calendar struct {
	loc *time.Location
}

// New builds a Calendar from an offset string such as "+05:30" or "-08:00".
func New(offset string) (*Calendar, error) {
	m := offsetRegex.FindStringSubmatch(offset)
	if m == nil {
		return nil, fmt.Errorf("invalid timezone offset %q: expected format +HH:MM", offset)
	}

	hours, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	if hours > 14 || minutes > 59 {
		return nil, fmt.Errorf("invalid timezone offset %q: out of range", offset)
	}

	seconds := hours*3600 + minutes*60
	if m[1] == "-" {
		seconds = -seconds
	}

	return &Calendar{loc: time.FixedZone("UTC"+offset, seconds)}, nil
}

// Location returns the fixed reporting location.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// DayKey returns the business day the instant t belongs to, as a midnight-UTC
// marker. Two instants share a day key exactly when they fall on the same
// calendar date in the reporting offset.
func (c *Calendar) DayKey(t time.Time) time.Time {
	year, month, day := t.In(c.loc).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// At composes an instant on the given day key at the given local wall time.
func (c *Calendar) At(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, c.loc)
}

// FormatDay renders a day key as YYYY-MM-DD.
func FormatDay(day time.Time) string {
	return day.Format(DayFormat)
}

// FormatDay renders a day key as YYYY-MM-DD. Day keys are offset-independent,
// so this is sugar for the package-level FormatDay.
func (c *Calendar) FormatDay(day time.Time) string {
	return FormatDay(day)
}

// ParseDay parses a YYYY-MM-DD string into a day key.
func (c *Calendar) ParseDay(s string) (time.Time, error) {
	return ParseDay(s)
}

// DateRange enumerates day keys from start through end inclusive.
func (c *Calendar) DateRange(start, end time.Time) ([]time.Time, error) {
	return DateRange(start, end)
}

// ParseDay parses a YYYY-MM-DD string into a day key.
func ParseDay(s string) (time.Time, error) {
	day, err := time.Parse(DayFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return day, nil
}

// DateRange enumerates every day key from start through end inclusive, in
// ascending order. Inputs are normalized to their UTC dates first so that a
// key produced by DayKey is always a valid argument.
func DateRange(start, end time.Time) ([]time.Time, error) {
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	if startDay.After(endDay) {
		return nil, ErrInvalidRange
	}

	days := make([]time.Time, 0, int(endDay.Sub(startDay).Hours()/24)+1)
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}
