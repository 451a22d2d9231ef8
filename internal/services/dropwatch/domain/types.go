package domain

import (
	"time"

	pstrings "dropwatch/internal/platform/strings"
)

// Outcome classifies one fetch attempt; exactly one applies per attempt
type Outcome uint8

const (
	// OutcomeOther covers transport errors, timeouts, malformed bodies and any unexpected status
	OutcomeOther Outcome = iota
	// OutcomeResolved is a 200 with at least one well-formed entry
	OutcomeResolved
	// OutcomeEmpty is a 200 that resolved nothing (retryable, never merged)
	OutcomeEmpty
	// OutcomeRateLimited is a 429
	OutcomeRateLimited
	// OutcomeForbidden is a 403
	OutcomeForbidden
)

// Outcomes lists every outcome in label order
var Outcomes = [...]Outcome{OutcomeResolved, OutcomeEmpty, OutcomeRateLimited, OutcomeForbidden, OutcomeOther}

func (o Outcome) String() string {
	switch o {
	case OutcomeResolved:
		return "resolved"
	case OutcomeEmpty:
		return "empty"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeForbidden:
		return "forbidden"
	default:
		return "other"
	}
}

// Observation is the identity seen for one requested handle; Identity "" means absent
type Observation struct {
	Handle   string
	Identity string
}

// ProbeResult is the classified result of one fetch attempt.
// Observations and At are only meaningful for OutcomeResolved
type ProbeResult struct {
	Outcome      Outcome
	Status       int
	At           time.Time
	Observations []Observation
	Err          error
}

// HandleRecord is the last known state of one handle
type HandleRecord struct {
	Identity string
	LastSeen time.Time
}

// Bound reports whether the handle currently has an identity
func (r HandleRecord) Bound() bool { return r.Identity != "" }

// Observed reports whether the handle was ever part of a resolved batch
func (r HandleRecord) Observed() bool { return !r.LastSeen.IsZero() }

// Loss captures an identity disappearing: Seen is the last instant it was
// present, Lost is the first instant it was observed absent
type Loss struct {
	Handle string
	Seen   time.Time
	Lost   time.Time
}

// NormalizeHandle returns the registry key for a handle (trimmed, lowercase)
func NormalizeHandle(h string) string { return pstrings.FoldKey(h) }

// Stats is a point-in-time view of engine state for the status API
type Stats struct {
	Handles  int   `json:"handles"`
	Windows  int   `json:"windows"`
	Clients  int   `json:"clients"`
	InFlight int64 `json:"in_flight"`
}
