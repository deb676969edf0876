package entity

import "time"

// Range selects the length of the reporting window
type Range string

const (
	RangeDay   Range = "day"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
)

// ParseRange maps a request token to a Range.
// Unknown or empty tokens fall back to RangeWeek.
func ParseRange(token string) Range {
	switch Range(token) {
	case RangeDay, RangeWeek, RangeMonth:
		return Range(token)
	default:
		return RangeWeek
	}
}

// Days returns the window length in days. A month is a fixed 30 days.
func (r Range) Days() int {
	switch r {
	case RangeDay:
		return 1
	case RangeMonth:
		return 30
	default:
		return 7
	}
}

// Duration returns the window length
func (r Range) Duration() time.Duration {
	return time.Duration(r.Days()) * 24 * time.Hour
}

// Interval is a half-open time window [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies in the interval
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Periods holds the current window and the adjacent preceding one
type Periods struct {
	Range    Range
	Now      time.Time
	Current  Interval
	Previous Interval
}

// Resolve computes the current and previous windows ending at now
func Resolve(r Range, now time.Time) Periods {
	length := r.Duration()
	currentStart := now.Add(-length)
	return Periods{
		Range:    r,
		Now:      now,
		Current:  Interval{Start: currentStart, End: now},
		Previous: Interval{Start: currentStart.Add(-length), End: currentStart},
	}
}
