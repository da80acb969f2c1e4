package schedule

import (
	"fmt"
	"time"
)

// MinuteOfDay is a time of day expressed as minutes since midnight.
type MinuteOfDay int

const minutesPerDay = 24 * 60

// ParseMinuteOfDay parses "15:04" style clock times.
func ParseMinuteOfDay(s string) (MinuteOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return MinuteOfDay(t.Hour()*60 + t.Minute()), nil
}

func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

func (m MinuteOfDay) Valid() bool {
	return m >= 0 && m < minutesPerDay
}

// Interval is a half-open [Start, End) time range on a calendar day.
type Interval struct {
	Date  time.Time
	Start MinuteOfDay
	End   MinuteOfDay
}

// Validate rejects inverted or empty ranges and out-of-day times. It must be
// called before Overlaps; overlap semantics are undefined for invalid input.
func (iv Interval) Validate() error {
	if !iv.Start.Valid() || !iv.End.Valid() {
		return fmt.Errorf("time of day out of range")
	}
	if iv.End <= iv.Start {
		return fmt.Errorf("end time %s must be after start time %s", iv.End, iv.Start)
	}
	return nil
}

// Overlaps reports whether two half-open intervals on the same day intersect.
// Touching endpoints (09:00-10:00 vs 10:00-11:00) do not overlap. Intervals
// on different days never overlap.
func (iv Interval) Overlaps(other Interval) bool {
	if !SameDay(iv.Date, other.Date) {
		return false
	}
	return iv.Start < other.End && other.Start < iv.End
}

// SameDay compares two timestamps by calendar day in UTC.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// DateOnly truncates a timestamp to midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
