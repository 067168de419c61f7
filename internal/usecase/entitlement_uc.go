// File: internal/usecase/entitlement_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/repository"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/logging"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/metrics"
)

// Compile-time check
var _ EntitlementUseCase = (*entitlementUC)(nil)

// EntitlementUseCase owns the VIP lifecycle: grant, lazy expiry and access derivation.
// Every store failure comes back wrapped in domain.ErrStoreUnavailable and must be
// shown to the user as "could not check", never as "not VIP".
type EntitlementUseCase interface {
	DeriveCurrentAccess(ctx context.Context, subjectID string) (model.EffectiveAccess, error)
	ReconcileExpiry(ctx context.Context, subjectID string) (*model.Entitlement, error)
	ApplyGrant(ctx context.Context, subjectID string, outcome model.ValidationOutcome) error
	Redeem(ctx context.Context, subjectID, rawCode string) (model.ValidationOutcome, model.EffectiveAccess, error)
}

type entitlementUC struct {
	store     repository.EntitlementStore
	validator *CodeValidator
	window    time.Duration
	now       func() time.Time
	log       *zerolog.Logger
	devMode   bool
}

// NewEntitlementUseCase wires the controller. window <= 0 means model.VIPWindow.
func NewEntitlementUseCase(
	store repository.EntitlementStore,
	validator *CodeValidator,
	window time.Duration,
	now func() time.Time,
	logger *zerolog.Logger,
	devMode bool,
) *entitlementUC {
	if window <= 0 {
		window = model.VIPWindow
	}
	if now == nil {
		now = time.Now
	}
	return &entitlementUC{
		store:     store,
		validator: validator,
		window:    window,
		now:       now,
		log:       logger,
		devMode:   devMode,
	}
}

// ReconcileExpiry loads the record and, if a time-boxed grant has outlived the
// window, persists isActive=false before returning it. Returns (nil, nil) when
// the subject has no record.
func (uc *entitlementUC) ReconcileExpiry(ctx context.Context, subjectID string) (*model.Entitlement, error) {
	defer logging.TraceDuration(uc.log, "EntitlementUC.ReconcileExpiry")()
	if subjectID == "" {
		return nil, domain.ErrInvalidArgument
	}

	e, err := uc.store.Get(ctx, subjectID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		metrics.IncStoreError("get")
		return nil, fmt.Errorf("%w: get %s: %v", domain.ErrStoreUnavailable, logging.Redact(subjectID, uc.devMode), err)
	}
	if e == nil {
		return nil, nil
	}

	if !e.Expired(uc.now(), uc.window) {
		return e, nil
	}

	expired := *e
	expired.IsActive = false
	if err := uc.store.Set(ctx, subjectID, &expired); err != nil {
		metrics.IncStoreError("set")
		return nil, fmt.Errorf("%w: expire %s: %v", domain.ErrStoreUnavailable, logging.Redact(subjectID, uc.devMode), err)
	}
	metrics.IncVIPExpiry()
	logging.With(ctx, uc.log).Info().
		Str("subject", logging.Redact(subjectID, uc.devMode)).
		Msg("time-boxed VIP expired")
	return &expired, nil
}

// DeriveCurrentAccess computes what the subject may see right now.
func (uc *entitlementUC) DeriveCurrentAccess(ctx context.Context, subjectID string) (model.EffectiveAccess, error) {
	defer logging.TraceDuration(uc.log, "EntitlementUC.DeriveCurrentAccess")()

	e, err := uc.ReconcileExpiry(ctx, subjectID)
	if err != nil {
		return model.NoAccess, err
	}
	return uc.accessOf(e), nil
}

func (uc *entitlementUC) accessOf(e *model.Entitlement) model.EffectiveAccess {
	if e == nil || !e.IsActive {
		return model.NoAccess
	}
	if e.IsPermanent {
		return model.EffectiveAccess{CanViewPremium: true, IsPermanent: true}
	}
	return model.EffectiveAccess{CanViewPremium: true, ExpiresAt: e.ExpiresAt(uc.window)}
}

// ApplyGrant persists a grant outcome. NoMatch writes nothing.
// A time-boxed grant never clears an existing permanent flag.
func (uc *entitlementUC) ApplyGrant(ctx context.Context, subjectID string, outcome model.ValidationOutcome) error {
	defer logging.TraceDuration(uc.log, "EntitlementUC.ApplyGrant")()
	if !outcome.IsGrant() {
		return nil
	}

	e, err := uc.store.Get(ctx, subjectID)
	switch {
	case errors.Is(err, domain.ErrNotFound) || (err == nil && e == nil):
		if e, err = model.NewEntitlement(subjectID); err != nil {
			return err
		}
	case err != nil:
		metrics.IncStoreError("get")
		return fmt.Errorf("%w: get %s: %v", domain.ErrStoreUnavailable, logging.Redact(subjectID, uc.devMode), err)
	}

	next := *e
	next.SubjectID = subjectID
	next.IsActive = true
	switch outcome.Kind {
	case model.OutcomeGrantPermanent:
		next.IsPermanent = true
	case model.OutcomeGrantTimeBoxed:
		at := outcome.ActivatedAt
		if at.IsZero() {
			at = uc.now()
		}
		next.ActivatedAt = &at
	}

	if err := uc.store.Set(ctx, subjectID, &next); err != nil {
		metrics.IncStoreError("set")
		return fmt.Errorf("%w: grant %s: %v", domain.ErrStoreUnavailable, logging.Redact(subjectID, uc.devMode), err)
	}
	metrics.IncVIPGrant(string(outcome.Kind))
	logging.With(ctx, uc.log).Info().
		Str("subject", logging.Redact(subjectID, uc.devMode)).
		Str("kind", string(outcome.Kind)).
		Msg("VIP granted")
	return nil
}

// Redeem validates raw, applies the grant if any, and returns the resulting access.
// NoMatch is not an error: the caller gets the outcome plus the unchanged access.
func (uc *entitlementUC) Redeem(ctx context.Context, subjectID, rawCode string) (model.ValidationOutcome, model.EffectiveAccess, error) {
	defer logging.TraceDuration(uc.log, "EntitlementUC.Redeem")()
	if subjectID == "" {
		return model.ValidationOutcome{Kind: model.OutcomeNoMatch}, model.NoAccess, domain.ErrUnauthenticated
	}

	outcome := uc.validator.Validate(rawCode)
	metrics.IncRedeemAttempt(string(outcome.Kind))
	if outcome.IsGrant() {
		if err := uc.ApplyGrant(ctx, subjectID, outcome); err != nil {
			return outcome, model.NoAccess, err
		}
	}

	access, err := uc.DeriveCurrentAccess(ctx, subjectID)
	if err != nil {
		return outcome, model.NoAccess, err
	}
	return outcome, access, nil
}
