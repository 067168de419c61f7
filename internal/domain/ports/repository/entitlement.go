package repository

import (
	"context"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
)

// EntitlementStore is the durable key-value port for VIP records.
// Get returns domain.ErrNotFound when the subject has no record; any other
// error means the backend itself failed.
type EntitlementStore interface {
	Get(ctx context.Context, subjectID string) (*model.Entitlement, error)
	Set(ctx context.Context, subjectID string, e *model.Entitlement) error
}
