// Package football adapts the API-Football v3 fixtures endpoint to the MatchSource port.
package football

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gregjones/httpcache"
	"github.com/rs/zerolog"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/config"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/adapter"
)

var _ adapter.MatchSource = (*Client)(nil)

const apiKeyHeader = "x-apisports-key"

type Client struct {
	base       string
	apiKey     string
	timezone   string
	maxRetries int
	http       *http.Client
	newBackOff func() backoff.BackOff
	log        *zerolog.Logger
}

// NewClient builds the adapter on an in-memory caching transport.
func NewClient(cfg config.FootballConfig, logger *zerolog.Logger) *Client {
	return &Client{
		base:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		timezone:   cfg.Timezone,
		maxRetries: cfg.MaxRetries,
		http: &http.Client{
			Transport: httpcache.NewTransport(httpcache.NewMemoryCache()),
			Timeout:   cfg.Timeout,
		},
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 300 * time.Millisecond
			b.MaxInterval = 3 * time.Second
			return b
		},
		log: logger,
	}
}

// WithBackOff replaces the retry schedule; tests use a zero backoff.
func (c *Client) WithBackOff(f func() backoff.BackOff) *Client {
	c.newBackOff = f
	return c
}

func (c *Client) ListByDate(ctx context.Context, day time.Time) ([]model.Match, error) {
	q := url.Values{}
	q.Set("date", day.Format("2006-01-02"))
	if c.timezone != "" {
		q.Set("timezone", c.timezone)
	}
	fixtures, err := c.fixtures(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]model.Match, 0, len(fixtures))
	for _, f := range fixtures {
		out = append(out, f.toMatch())
	}
	return out, nil
}

func (c *Client) FindByID(ctx context.Context, id string) (*model.Match, error) {
	if _, err := strconv.Atoi(id); err != nil {
		return nil, domain.ErrNotFound
	}
	q := url.Values{}
	q.Set("id", id)
	if c.timezone != "" {
		q.Set("timezone", c.timezone)
	}
	fixtures, err := c.fixtures(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(fixtures) == 0 {
		return nil, domain.ErrNotFound
	}
	m := fixtures[0].toMatch()
	return &m, nil
}

func (c *Client) fixtures(ctx context.Context, q url.Values) ([]fixtureItem, error) {
	endpoint := c.base + "/fixtures?" + q.Encode()

	op := func() (*fixturesResponse, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set(apiKeyHeader, c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil, fmt.Errorf("fixtures http %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil, backoff.Permanent(fmt.Errorf("fixtures http %d", resp.StatusCode))
		}

		var body fixturesResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decode fixtures: %w", err))
		}
		if msg := body.errorMessage(); msg != "" {
			return nil, backoff.Permanent(fmt.Errorf("fixtures api error: %s", msg))
		}
		return &body, nil
	}

	body, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
		backoff.WithNotify(func(err error, d time.Duration) {
			if c.log != nil {
				c.log.Debug().Err(err).Dur("retry_in", d).Msg("fixtures request failed, retrying")
			}
		}),
	)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrMatchSourceUnavailable, err)
	}
	return body.Response, nil
}
