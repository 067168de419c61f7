package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthenticated = errors.New("no authenticated subject")
	ErrRateLimited     = errors.New("too many attempts")
	ErrLockHeld        = errors.New("lock held by another worker")

	// ErrStoreUnavailable means the entitlement backend could not be read or written.
	// It must never be collapsed into "not entitled".
	ErrStoreUnavailable = errors.New("entitlement store unavailable")

	// ErrGenerationFailed is raised by the LLM path and absorbed by the prediction use case.
	ErrGenerationFailed = errors.New("prediction generation failed")

	// ErrMatchSourceUnavailable is raised by the fixtures adapter and absorbed by the match use case.
	ErrMatchSourceUnavailable = errors.New("match source unavailable")
)
