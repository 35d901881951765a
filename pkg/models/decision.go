package models

import (
	"time"
)

// Decision sources
const (
	SourceCLI = "cli"
	SourceAPI = "api"
)

// Decision is the audit record of a single gate evaluation
type Decision struct {
	ID        string    `json:"id"`
	Window    string    `json:"window"`
	Time      int       `json:"time"`
	Allowed   bool      `json:"allowed"`
	Source    string    `json:"source,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// DecisionStats aggregates decisions per window for the metrics endpoint
type DecisionStats struct {
	Allowed map[string]int `json:"allowed"`
	Denied  map[string]int `json:"denied"`
	Total   int            `json:"total"`
}

// CheckRequest is a request to evaluate a time value against a window.
// Time is a pointer so that an omitted value can fall back to the server
// clock; the value itself is not range-validated.
type CheckRequest struct {
	Time   *int   `json:"time,omitempty"`
	Window string `json:"window,omitempty"`
}

// CheckResponse is the result of a gate evaluation
type CheckResponse struct {
	Time    int    `json:"time"`
	Window  string `json:"window"`
	Allowed bool   `json:"allowed"`
	Message string `json:"message"`
}
