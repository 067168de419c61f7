package model

import (
	"time"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain"
)

// VIPWindow is how long a time-boxed grant lasts: 30*24*60*60*1000 ms.
const VIPWindow = 30 * 24 * time.Hour

// Entitlement is the persisted VIP record of one subject.
type Entitlement struct {
	SubjectID   string     `json:"subject_id"`
	IsActive    bool       `json:"is_active"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
	IsPermanent bool       `json:"is_permanent"`
}

func NewEntitlement(subjectID string) (*Entitlement, error) {
	if subjectID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Entitlement{SubjectID: subjectID}, nil
}

// ExpiresAt returns nil for permanent or never-activated entitlements.
func (e *Entitlement) ExpiresAt(window time.Duration) *time.Time {
	if e == nil || e.IsPermanent || e.ActivatedAt == nil {
		return nil
	}
	t := e.ActivatedAt.Add(window)
	return &t
}

// Expired reports whether a time-boxed entitlement has outlived window at now.
// The boundary itself (elapsed == window) still counts as active.
func (e *Entitlement) Expired(now time.Time, window time.Duration) bool {
	if e == nil || !e.IsActive || e.IsPermanent {
		return false
	}
	if e.ActivatedAt == nil {
		// active, not permanent and never stamped: nothing to measure from
		return true
	}
	return now.Sub(*e.ActivatedAt) > window
}

// EffectiveAccess is derived from an Entitlement at a point in time and is never persisted.
type EffectiveAccess struct {
	CanViewPremium bool
	IsPermanent    bool
	ExpiresAt      *time.Time
}

// NoAccess is the zero view used for anonymous or non-entitled subjects.
var NoAccess = EffectiveAccess{}
