package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		token string
		want  Range
	}{
		{"day", RangeDay},
		{"week", RangeWeek},
		{"month", RangeMonth},
		{"", RangeWeek},
		{"year", RangeWeek},
		{"DAY", RangeWeek},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRange(tt.token))
		})
	}
}

func TestRangeDays(t *testing.T) {
	assert.Equal(t, 1, RangeDay.Days())
	assert.Equal(t, 7, RangeWeek.Days())
	assert.Equal(t, 30, RangeMonth.Days())
	assert.Equal(t, 7, Range("bogus").Days())
}

func TestResolve(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	for _, r := range []Range{RangeDay, RangeWeek, RangeMonth} {
		t.Run(string(r), func(t *testing.T) {
			p := Resolve(r, now)

			assert.Equal(t, now, p.Current.End)
			assert.Equal(t, p.Current.Start, p.Previous.End, "windows must be adjacent")
			assert.True(t, p.Previous.Start.Before(p.Current.Start))
			assert.True(t, p.Current.Start.Before(now))
			assert.Equal(t, p.Current.End.Sub(p.Current.Start), p.Previous.End.Sub(p.Previous.Start))
			assert.Equal(t, time.Duration(r.Days())*24*time.Hour, p.Current.End.Sub(p.Current.Start))
		})
	}
}

func TestResolve_MonthIsThirtyDays(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	p := Resolve(RangeMonth, now)

	assert.Equal(t, time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC), p.Current.Start)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), p.Previous.Start)
}

func TestIntervalContains(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	i := Interval{Start: start, End: start.Add(time.Hour)}

	assert.True(t, i.Contains(start), "start is inclusive")
	assert.True(t, i.Contains(start.Add(30*time.Minute)))
	assert.False(t, i.Contains(start.Add(time.Hour)), "end is exclusive")
	assert.False(t, i.Contains(start.Add(-time.Nanosecond)))
}
