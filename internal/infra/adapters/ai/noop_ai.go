package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

// NoopAIAdapter answers every chat with a fixed, valid prediction document.
// Used in dev mode when no provider key is configured.
type NoopAIAdapter struct {
	log   *zerolog.Logger
	delay time.Duration
}

func NewNoopAIAdapter(logger *zerolog.Logger) *NoopAIAdapter {
	return &NoopAIAdapter{log: logger, delay: 100 * time.Millisecond}
}

const noopPrediction = `{
  "predictions": [
    {"bet_type": "1X2", "recommendation": "1", "probability": 55, "confidence": "MEDIUM", "odds": 1.9},
    {"bet_type": "Over/Under 2.5", "recommendation": "Over 2.5", "probability": 58, "confidence": "MEDIUM", "odds": 1.8},
    {"bet_type": "BTTS", "recommendation": "Yes", "probability": 52, "confidence": "LOW", "odds": 1.75}
  ],
  "analysis": "Offline analysis: both sides in average form, slight home advantage.",
  "vip_insight": {
    "exact_scores": ["2-1", "1-1"],
    "stats": {"home_form": "WDWLW", "away_form": "LDWWD", "expected_goals_home": 1.6, "expected_goals_away": 1.1,
              "btts_probability": 52, "over_2_5_probability": 58}
  }
}`

func (a *NoopAIAdapter) Provider() string { return "noop" }

func (a *NoopAIAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{"noop-ai-model"}, nil
}

func (a *NoopAIAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	reply, _, err := a.ChatWithUsage(ctx, model, messages)
	return reply, err
}

func (a *NoopAIAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	// Simulate processing and respect ctx
	select {
	case <-time.After(a.delay):
	case <-ctx.Done():
		return "", adapter.Usage{}, ctx.Err()
	}
	if a.log != nil {
		a.log.Debug().Str("model", model).Int("messages", len(messages)).Msg("noop ai chat")
	}
	return noopPrediction, adapter.Usage{}, nil
}
