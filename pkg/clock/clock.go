// Package clock provides an injectable source of "now" bound to a fixed UTC offset.
//
// Shops operate in a single fixed offset (UTC+9 by default), so every
// date/time-of-day comparison in the engine is made against Clock.Now(),
// never against the server's local zone.
package clock

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Clock returns the current instant in a fixed zone.
type Clock struct {
	loc   *time.Location
	nowFn func() time.Time
}

// New returns a real clock in the zone UTC+offsetMinutes.
func New(offsetMinutes int) *Clock {
	return &Clock{
		loc:   FixedZone(offsetMinutes),
		nowFn: time.Now,
	}
}

// NewFixed returns a clock pinned to t, reported in the zone UTC+offsetMinutes.
func NewFixed(t time.Time, offsetMinutes int) *Clock {
	return &Clock{
		loc:   FixedZone(offsetMinutes),
		nowFn: func() time.Time { return t },
	}
}

// FixedZone builds a named fixed zone, e.g. "UTC+09:00".
func FixedZone(offsetMinutes int) *time.Location {
	sign := "+"
	abs := offsetMinutes
	if abs < 0 {
		sign = "-"
		abs = -abs
	}
	name := fmt.Sprintf("UTC%s%02d:%02d", sign, abs/60, abs%60)
	return time.FixedZone(name, offsetMinutes*60)
}

// Now returns the current instant in the clock's zone.
func (c *Clock) Now() time.Time {
	return c.nowFn().In(c.loc)
}

// Location returns the clock's zone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Today returns the current wall-clock date as YYYY-MM-DD.
func (c *Clock) Today() string {
	return c.Now().Format(dateLayout)
}
