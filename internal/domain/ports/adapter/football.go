package adapter

import (
	"context"
	"time"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
)

// MatchSource is the port for the third-party sports-data API.
type MatchSource interface {
	// ListByDate returns every fixture kicking off on the calendar date of day.
	ListByDate(ctx context.Context, day time.Time) ([]model.Match, error)
	// FindByID returns domain.ErrNotFound for unknown fixtures.
	FindByID(ctx context.Context, id string) (*model.Match, error)
}
