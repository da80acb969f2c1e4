package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMinuteOfDay(t *testing.T) {
	m, err := ParseMinuteOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, MinuteOfDay(9*60+30), m)
	assert.Equal(t, "09:30", m.String())

	_, err = ParseMinuteOfDay("25:00")
	assert.Error(t, err)

	_, err = ParseMinuteOfDay("9am")
	assert.Error(t, err)
}

func TestIntervalValidate(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		start   MinuteOfDay
		end     MinuteOfDay
		wantErr bool
	}{
		{"valid", 9 * 60, 10 * 60, false},
		{"end equals start", 9 * 60, 9 * 60, true},
		{"end before start", 10 * 60, 9 * 60, true},
		{"negative start", -1, 10 * 60, true},
		{"end past midnight", 23 * 60, 25 * 60, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Interval{Date: day, Start: tc.start, End: tc.end}.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIntervalOverlaps(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	otherDay := day.AddDate(0, 0, 1)

	iv := func(d time.Time, start, end MinuteOfDay) Interval {
		return Interval{Date: d, Start: start, End: end}
	}

	a := iv(day, 9*60, 10*60)

	// Touching endpoints are not an overlap under half-open semantics.
	assert.False(t, a.Overlaps(iv(day, 10*60, 11*60)))
	assert.False(t, a.Overlaps(iv(day, 8*60, 9*60)))

	assert.True(t, a.Overlaps(iv(day, 9*60+30, 10*60+30)))
	assert.True(t, a.Overlaps(iv(day, 8*60+30, 9*60+30)))
	assert.True(t, a.Overlaps(iv(day, 8*60, 11*60)))  // containing
	assert.True(t, a.Overlaps(iv(day, 9*60+15, 9*60+45))) // contained
	assert.True(t, a.Overlaps(a))

	// Same clock times on a different day never overlap.
	assert.False(t, a.Overlaps(iv(otherDay, 9*60, 10*60)))
}

func TestIntervalOverlapsIsSymmetric(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	a := Interval{Date: day, Start: 9 * 60, End: 11 * 60}
	b := Interval{Date: day, Start: 10 * 60, End: 12 * 60}

	assert.Equal(t, a.Overlaps(b), b.Overlaps(a))
	assert.True(t, a.Overlaps(b))
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2026, 9, 1, 14, 35, 12, 999, time.FixedZone("X", 3600))
	got := DateOnly(ts)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), got)
}
