package redis

import (
	"context"
	"time"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/repository"
)

var _ repository.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is a fixed-window counter shared by every instance.
type RateLimiter struct {
	client *Client
}

func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return true, nil
	}
	count, err := r.client.IncrWithin(ctx, key, window)
	if err != nil {
		return false, err
	}
	return count <= int64(limit), nil
}
