// Package memory holds process-local implementations of the storage ports,
// used in dev mode and when no Redis/Postgres backend is configured.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/repository"
)

var (
	_ repository.EntitlementStore = (*EntitlementStore)(nil)
	_ repository.PredictionCache  = (*PredictionCache)(nil)
	_ repository.RateLimiter      = (*RateLimiter)(nil)
)

type EntitlementStore struct {
	mu   sync.Mutex
	data map[string]model.Entitlement
}

func NewEntitlementStore() *EntitlementStore {
	return &EntitlementStore{data: map[string]model.Entitlement{}}
}

func (s *EntitlementStore) Get(ctx context.Context, subjectID string) (*model.Entitlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[subjectID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if e.ActivatedAt != nil {
		at := *e.ActivatedAt
		e.ActivatedAt = &at
	}
	return &e, nil
}

func (s *EntitlementStore) Set(ctx context.Context, subjectID string, e *model.Entitlement) error {
	if e == nil {
		return domain.ErrInvalidArgument
	}
	cp := *e
	cp.SubjectID = subjectID
	if e.ActivatedAt != nil {
		at := *e.ActivatedAt
		cp.ActivatedAt = &at
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[subjectID] = cp
	return nil
}

type cachedPrediction struct {
	p       model.Prediction
	expires time.Time
}

// PredictionCache is a TTL map keyed like the Redis cache.
type PredictionCache struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	data map[string]cachedPrediction
}

func NewPredictionCache(ttl time.Duration) *PredictionCache {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &PredictionCache{ttl: ttl, now: time.Now, data: map[string]cachedPrediction{}}
}

func (c *PredictionCache) key(matchID string, lang model.Language) string {
	return fmt.Sprintf("%s:%s", matchID, lang.Code())
}

func (c *PredictionCache) Get(ctx context.Context, matchID string, lang model.Language) (*model.Prediction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := c.key(matchID, lang)
	v, ok := c.data[k]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if c.now().After(v.expires) {
		delete(c.data, k)
		return nil, domain.ErrNotFound
	}
	p := v.p
	return &p, nil
}

func (c *PredictionCache) Put(ctx context.Context, p *model.Prediction) error {
	if p == nil || p.IsFallback {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[c.key(p.MatchID, p.Language)] = cachedPrediction{p: *p, expires: c.now().Add(c.ttl)}
	return nil
}

type window struct {
	count int
	reset time.Time
}

// RateLimiter mirrors the Redis fixed-window limiter for single-instance runs.
type RateLimiter struct {
	mu   sync.Mutex
	now  func() time.Time
	hits map[string]*window
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{now: time.Now, hits: map[string]*window{}}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, win time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	w, ok := r.hits[key]
	if !ok || !now.Before(w.reset) {
		w = &window{reset: now.Add(win)}
		r.hits[key] = w
	}
	w.count++
	return w.count <= limit, nil
}
