package clock

import "time"

// Clock provides the current time of day in compact HHMM form (20:00 -> 2000).
// Abstracted so gate checks are deterministic in tests.
type Clock interface {
	Now() int
}

// SystemClock reads the local wall clock
type SystemClock struct{}

// Now returns the current local time as HHMM
func (SystemClock) Now() int {
	return FromTime(time.Now())
}

// FixedClock always reports the same time value
type FixedClock struct {
	Time int
}

// Now returns the fixed time value
func (c FixedClock) Now() int {
	return c.Time
}

// FromTime converts a time.Time to its compact HHMM representation
func FromTime(t time.Time) int {
	return t.Hour()*100 + t.Minute()
}
