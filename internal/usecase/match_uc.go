package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/adapter"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/logging"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/metrics"
)

// Compile-time check
var _ MatchUseCase = (*matchUC)(nil)

// MatchUseCase exposes the day's fixtures as classified content items.
type MatchUseCase interface {
	// ListByDate never fails because the source is down; it returns an empty list instead.
	ListByDate(ctx context.Context, day time.Time) ([]model.ContentItem, error)
	Find(ctx context.Context, matchID string) (*model.ContentItem, error)
}

type matchUC struct {
	source     adapter.MatchSource
	classifier *MatchClassifier
	leagues    map[int]struct{}
	log        *zerolog.Logger
}

// NewMatchUseCase builds the catalogue. An empty leagues slice disables the allow-list.
func NewMatchUseCase(source adapter.MatchSource, classifier *MatchClassifier, leagues []int, logger *zerolog.Logger) *matchUC {
	allow := make(map[int]struct{}, len(leagues))
	for _, id := range lo.Uniq(leagues) {
		allow[id] = struct{}{}
	}
	return &matchUC{source: source, classifier: classifier, leagues: allow, log: logger}
}

func (uc *matchUC) ListByDate(ctx context.Context, day time.Time) ([]model.ContentItem, error) {
	defer logging.TraceDuration(uc.log, "MatchUC.ListByDate")()

	matches, err := uc.source.ListByDate(ctx, day)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		metrics.IncMatchFetch("error")
		logging.With(ctx, uc.log).Warn().Err(err).
			Str("date", day.Format("2006-01-02")).
			Msg("match source unavailable, serving empty list")
		return []model.ContentItem{}, nil
	}
	metrics.IncMatchFetch("ok")

	items := make([]model.ContentItem, 0, len(matches))
	for _, m := range matches {
		if !uc.allowed(m) {
			continue
		}
		items = append(items, uc.classify(m))
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Match.KickoffAt.Before(items[j].Match.KickoffAt)
	})

	premium := lo.CountBy(items, func(it model.ContentItem) bool {
		return it.Classification == model.ClassificationPremium
	})
	metrics.AddMatchesClassified(string(model.ClassificationPremium), premium)
	metrics.AddMatchesClassified(string(model.ClassificationStandard), len(items)-premium)
	return items, nil
}

func (uc *matchUC) Find(ctx context.Context, matchID string) (*model.ContentItem, error) {
	defer logging.TraceDuration(uc.log, "MatchUC.Find")()
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, domain.ErrInvalidArgument
	}

	m, err := uc.source.FindByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		metrics.IncMatchFetch("error")
		if errors.Is(err, domain.ErrMatchSourceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrMatchSourceUnavailable, err)
	}
	if m == nil || !uc.allowed(*m) {
		return nil, domain.ErrNotFound
	}
	metrics.IncMatchFetch("ok")
	item := uc.classify(*m)
	return &item, nil
}

func (uc *matchUC) classify(m model.Match) model.ContentItem {
	return model.ContentItem{Match: m, Classification: uc.classifier.Classify(m)}
}

func (uc *matchUC) allowed(m model.Match) bool {
	if len(uc.leagues) == 0 {
		return true
	}
	_, ok := uc.leagues[m.LeagueID]
	return ok
}
