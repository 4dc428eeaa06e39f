package engine

import (
	"time"

	"github.com/tartampluch/go-lich/internal/lich"
)

// Clock abstracts time.Now() to allow deterministic testing.
// It is used to determine "today" for feeds, grids and surveys.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Today returns the calendar date of c in the fixed UTC+7 zone.
func Today(c Clock) lich.Date {
	if c == nil {
		c = RealClock{}
	}
	return lich.FromTime(c.Now())
}
