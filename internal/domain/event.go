package domain

import "time"

// RecomputeEvent records one execution of a derived-value computation in a
// session. It is the payload of the outbound recomputation stream.
type RecomputeEvent struct {
	SessionID   string    `json:"session_id"`
	Computation string    `json:"computation"`
	Trigger     string    `json:"trigger"`
	Scale       float64   `json:"scale"`
	Shape       float64   `json:"shape"`
	Mean        float64   `json:"mean"`
	Error       string    `json:"error,omitempty"`
	At          time.Time `json:"recomputed_at"`
}
