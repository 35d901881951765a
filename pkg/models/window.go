package models

import (
	"time"
)

// DefaultWindowName is the window used when a check does not name one
const DefaultWindowName = "working-hours"

// Window represents a named availability window. A time value is inside the
// window when it falls strictly between Open and Close; both bounds are
// exclusive. Bounds are compact HHMM integers (2000 == 20:00) but are not
// validated: out-of-range values are accepted and compared numerically.
type Window struct {
	Name        string    `json:"name" yaml:"name"`
	Open        int       `json:"open" yaml:"open"`
	Close       int       `json:"close" yaml:"close"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at,omitempty" yaml:"-"`
}

// Contains reports whether t falls strictly inside the window
func (w Window) Contains(t int) bool {
	return w.Open < t && t < w.Close
}

// DefaultWindow returns the shipped working-hours window (1100, 2100)
func DefaultWindow() Window {
	return Window{
		Name:        DefaultWindowName,
		Open:        1100,
		Close:       2100,
		Description: "Default working hours, both bounds exclusive",
	}
}

// WindowFile is the on-disk format for preloading windows at startup
type WindowFile struct {
	Windows []Window `yaml:"windows"`
}
