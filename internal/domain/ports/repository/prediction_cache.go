package repository

import (
	"context"
	"time"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
)

// PredictionCache keeps fresh prediction bundles per match and language.
// Get returns domain.ErrNotFound on a miss.
type PredictionCache interface {
	Get(ctx context.Context, matchID string, lang model.Language) (*model.Prediction, error)
	Put(ctx context.Context, p *model.Prediction) error
}

// Locker serializes expensive work across instances.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// RateLimiter counts attempts per key within a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RedeemKey scopes code-redemption attempts to one subject.
func RedeemKey(subjectID string) string {
	return "rate_limit:redeem:" + subjectID
}
