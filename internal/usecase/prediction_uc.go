// File: internal/usecase/prediction_uc.go
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/adapter"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/repository"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/logging"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/metrics"
)

// Compile-time check
var _ PredictionUseCase = (*predictionUC)(nil)

// Translator resolves localized strings. Language is always explicit.
type Translator interface {
	T(lang model.Language, key string, args ...interface{}) string
}

// PredictionUseCase produces a prediction bundle for one match.
// Generate only errors on bad input or a cancelled context; upstream failures
// are absorbed into a fallback bundle with IsFallback set.
type PredictionUseCase interface {
	Generate(ctx context.Context, match model.Match, lang model.Language) (*model.Prediction, error)
}

type PredictionConfig struct {
	Model      string
	MaxRetries int
	LockTTL    time.Duration
	// NewBackOff builds the retry schedule per call; nil means exponential.
	NewBackOff func() backoff.BackOff
	Now        func() time.Time
}

type predictionUC struct {
	ai     adapter.AIServiceAdapter
	cache  repository.PredictionCache
	locker repository.Locker
	tr     Translator
	cfg    PredictionConfig
	log    *zerolog.Logger
}

// NewPredictionUseCase wires the generator. cache and locker may be nil.
func NewPredictionUseCase(
	ai adapter.AIServiceAdapter,
	cache repository.PredictionCache,
	locker repository.Locker,
	tr Translator,
	cfg PredictionConfig,
	logger *zerolog.Logger,
) *predictionUC {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	if cfg.NewBackOff == nil {
		cfg.NewBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			return b
		}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &predictionUC{ai: ai, cache: cache, locker: locker, tr: tr, cfg: cfg, log: logger}
}

func (uc *predictionUC) Generate(ctx context.Context, match model.Match, lang model.Language) (*model.Prediction, error) {
	defer logging.TraceDuration(uc.log, "PredictionUC.Generate")()
	if match.ID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if _, ok := model.ParseLanguage(string(lang)); !ok {
		lang = model.DefaultLanguage
	}
	log := logging.With(ctx, uc.log).With().Str("match_id", match.ID).Str("lang", string(lang)).Logger()

	if p := uc.cached(ctx, match.ID, lang); p != nil {
		metrics.IncPrediction("cache", string(lang))
		return p, nil
	}

	if uc.locker != nil {
		key := "prediction_lock:" + match.ID + ":" + lang.Code()
		token, err := uc.locker.TryLock(ctx, key, uc.cfg.LockTTL)
		if err == nil {
			defer func() {
				if err := uc.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
					log.Warn().Err(err).Msg("failed to release prediction lock")
				}
			}()
		} else {
			// someone else is generating; their result may already be cached
			log.Debug().Err(err).Msg("prediction lock not acquired")
			if p := uc.cached(ctx, match.ID, lang); p != nil {
				metrics.IncPrediction("cache", string(lang))
				return p, nil
			}
		}
	}

	p, err := uc.generateFresh(ctx, match, lang)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Msg("prediction generation failed, serving fallback")
		metrics.IncPrediction("fallback", string(lang))
		return uc.fallback(match, lang), nil
	}

	if uc.cache != nil {
		if err := uc.cache.Put(ctx, p); err != nil {
			log.Warn().Err(err).Msg("failed to cache prediction")
		}
	}
	metrics.IncPrediction("fresh", string(lang))
	return p, nil
}

func (uc *predictionUC) cached(ctx context.Context, matchID string, lang model.Language) *model.Prediction {
	if uc.cache == nil {
		return nil
	}
	p, err := uc.cache.Get(ctx, matchID, lang)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logging.With(ctx, uc.log).Warn().Err(err).Msg("prediction cache read failed")
		}
		return nil
	}
	return p
}

func (uc *predictionUC) generateFresh(ctx context.Context, match model.Match, lang model.Language) (*model.Prediction, error) {
	msgs := []adapter.Message{
		{Role: adapter.RoleSystem, Content: systemPrompt(lang)},
		{Role: adapter.RoleUser, Content: matchPrompt(match, lang)},
	}

	op := func() (*model.Prediction, error) {
		reply, err := uc.ai.Chat(ctx, uc.cfg.Model, msgs)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, err
		}
		return parsePrediction(reply)
	}

	p, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(uc.cfg.NewBackOff()),
		backoff.WithMaxTries(uint(uc.cfg.MaxRetries+1)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	p.ID = ulid.MustNew(ulid.Timestamp(uc.cfg.Now()), rand.Reader).String()
	p.MatchID = match.ID
	p.Language = lang
	p.Model = uc.cfg.Model
	p.GeneratedAt = uc.cfg.Now().UTC()
	p.IsFallback = false
	return p, nil
}

// fallback is the static degraded bundle. It is never cached.
func (uc *predictionUC) fallback(match model.Match, lang model.Language) *model.Prediction {
	tip := func(betType, rec string) model.BetTip {
		return model.BetTip{
			BetType:        betType,
			Recommendation: rec,
			Probability:    50,
			Confidence:     model.ConfidenceLow,
			Odds:           2.0,
		}
	}
	return &model.Prediction{
		ID:       ulid.MustNew(ulid.Timestamp(uc.cfg.Now()), rand.Reader).String(),
		MatchID:  match.ID,
		Language: lang,
		Tips: []model.BetTip{
			tip(uc.tr.T(lang, "bet.result"), uc.tr.T(lang, "fallback.recommendation")),
			tip(uc.tr.T(lang, "bet.goals"), uc.tr.T(lang, "fallback.recommendation")),
		},
		Analysis:    uc.tr.T(lang, "fallback.analysis", match.Title()),
		GeneratedAt: uc.cfg.Now().UTC(),
		IsFallback:  true,
	}
}

func systemPrompt(lang model.Language) string {
	language := "French"
	if lang == model.LanguageEN {
		language = "English"
	}
	return "You are a professional football betting analyst. " +
		"Answer ONLY with a single JSON object, no prose, no markdown. " +
		"Write every text field in " + language + ". Schema: " +
		`{"predictions":[{"bet_type":string,"recommendation":string,"probability":int 0-100,` +
		`"confidence":"LOW"|"MEDIUM"|"HIGH","odds":decimal > 1}],"analysis":string,` +
		`"vip_insight":{"exact_scores":[string],"stats":{"home_form":string,"away_form":string,` +
		`"expected_goals_home":number,"expected_goals_away":number,"btts_probability":int,` +
		`"over_2_5_probability":int,"key_absences":string,"head_to_head":string}}}`
}

func matchPrompt(m model.Match, lang model.Language) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Match: %s\n", m.Title())
	if m.League != "" {
		fmt.Fprintf(&b, "Competition: %s", m.League)
		if m.Country != "" {
			fmt.Fprintf(&b, " (%s)", m.Country)
		}
		b.WriteString("\n")
	}
	if !m.KickoffAt.IsZero() {
		fmt.Fprintf(&b, "Kickoff: %s\n", m.KickoffAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "Give 3 to 5 tips ordered by confidence, a tactical analysis and 2 exact-score guesses. Language: %s.", lang)
	return b.String()
}

// parsePrediction accepts the raw LLM reply, tolerating markdown fences and
// leading prose, and validates the decoded bundle.
func parsePrediction(reply string) (*model.Prediction, error) {
	raw := stripFences(reply)
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return nil, errors.New("no JSON object in reply")
	}

	var p model.Prediction
	if err := json.Unmarshal([]byte(raw[start:end+1]), &p); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	for i := range p.Tips {
		if c, ok := model.ParseConfidence(string(p.Tips[i].Confidence)); ok {
			p.Tips[i].Confidence = c
		}
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reply: %w", err)
	}
	return &p, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
