package service

import (
	"time"

	"github.com/alexanderramin/tutor/internal/deadline"
)

// Clock returns the current instant. Calendar dates are taken in its location.
type Clock func() time.Time

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// today returns the clock's local calendar date.
func (c Clock) today() time.Time {
	return deadline.Date(c())
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// streakDays counts consecutive calendar days, ending today, on which at
// least one of times falls. Times are bucketed in loc.
func streakDays(times []time.Time, today time.Time, loc *time.Location) int {
	days := make(map[time.Time]bool, len(times))
	for _, t := range times {
		days[deadline.Date(t.In(loc))] = true
	}
	streak := 0
	for d := today; days[d]; d = d.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}
