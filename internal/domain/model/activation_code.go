package model

import (
	"strings"
	"time"
)

// OutcomeKind is the result class of an access-code check.
type OutcomeKind string

const (
	OutcomeNoMatch        OutcomeKind = "no_match"
	OutcomeGrantPermanent OutcomeKind = "grant_permanent"
	OutcomeGrantTimeBoxed OutcomeKind = "grant_time_boxed"
)

// ValidationOutcome is what the code validator decides for one input.
// ActivatedAt is only set for time-boxed grants.
type ValidationOutcome struct {
	Kind        OutcomeKind
	ActivatedAt time.Time
}

func (o ValidationOutcome) IsGrant() bool {
	return o.Kind == OutcomeGrantPermanent || o.Kind == OutcomeGrantTimeBoxed
}

// NormalizeCode applies the only normalization codes get: trim then uppercase.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
