package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/repository"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/metrics"
)

var _ repository.PredictionCache = (*PredictionCache)(nil)

type PredictionCache struct {
	client *Client
	ttl    time.Duration
}

func NewPredictionCache(client *Client, ttl time.Duration) *PredictionCache {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &PredictionCache{client: client, ttl: ttl}
}

func predictionKey(matchID string, lang model.Language) string {
	return fmt.Sprintf("prediction:%s:%s", matchID, lang.Code())
}

func (c *PredictionCache) Get(ctx context.Context, matchID string, lang model.Language) (*model.Prediction, error) {
	data, err := c.client.Get(ctx, predictionKey(matchID, lang))
	if errors.Is(err, domain.ErrNotFound) {
		metrics.IncCacheRequest("prediction", "miss")
		return nil, domain.ErrNotFound
	}
	if err != nil {
		metrics.IncCacheRequest("prediction", "error")
		return nil, err
	}

	var p model.Prediction
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		metrics.IncCacheRequest("prediction", "error")
		return nil, err
	}
	metrics.IncCacheRequest("prediction", "hit")
	return &p, nil
}

// Put refuses fallback bundles so a transient outage is never served for the whole TTL.
func (c *PredictionCache) Put(ctx context.Context, p *model.Prediction) error {
	if p == nil || p.IsFallback {
		return nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, predictionKey(p.MatchID, p.Language), data, c.ttl)
}
