package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/metrics"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/worker"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/usecase"
)

// Submitter is the part of worker.Pool the warmup needs.
type Submitter interface {
	Submit(task worker.Task) error
}

// WarmupWorker periodically lists today's matches so the fixtures cache is hot
// and, optionally, pre-generates premium predictions. It never touches entitlements.
type WarmupWorker struct {
	interval  time.Duration
	matchUC   usecase.MatchUseCase
	predUC    usecase.PredictionUseCase
	pool      Submitter
	warmPreds bool
	languages []model.Language
	now       func() time.Time
	log       *zerolog.Logger
}

func NewWarmupWorker(
	interval time.Duration,
	matchUC usecase.MatchUseCase,
	predUC usecase.PredictionUseCase,
	pool Submitter,
	warmPredictions bool,
	logger *zerolog.Logger,
) *WarmupWorker {
	wLog := logger.With().Str("component", "WarmupWorker").Logger()
	return &WarmupWorker{
		interval:  interval,
		matchUC:   matchUC,
		predUC:    predUC,
		pool:      pool,
		warmPreds: warmPredictions,
		languages: []model.Language{model.LanguageFR, model.LanguageEN},
		now:       time.Now,
		log:       &wLog,
	}
}

// Run blocks until ctx is done. A non-positive interval disables the worker.
func (w *WarmupWorker) Run(ctx context.Context) error {
	if w.interval <= 0 {
		w.log.Info().Msg("warmup disabled")
		return nil
	}
	w.log.Info().Dur("interval", w.interval).Msg("Starting warmup worker")
	w.Tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping warmup worker")
			return ctx.Err()
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs one warmup pass and returns how many prediction jobs were queued.
func (w *WarmupWorker) Tick(ctx context.Context) int {
	items, err := w.matchUC.ListByDate(ctx, w.now().UTC())
	if err != nil {
		w.log.Warn().Err(err).Msg("warmup listing failed")
		return 0
	}
	if !w.warmPreds || w.predUC == nil || w.pool == nil {
		return 0
	}

	queued := 0
	for _, it := range items {
		if it.Classification != model.ClassificationPremium {
			continue
		}
		for _, lang := range w.languages {
			m, lang := it.Match, lang
			err := w.pool.Submit(func(ctx context.Context) error {
				p, err := w.predUC.Generate(ctx, m, lang)
				if err != nil {
					metrics.IncWarmupJob("failed")
					return err
				}
				if p.IsFallback {
					metrics.IncWarmupJob("failed")
					return nil
				}
				metrics.IncWarmupJob("completed")
				return nil
			})
			if err != nil {
				metrics.IncWarmupJob("dropped")
				w.log.Debug().Err(err).Str("match_id", m.ID).Msg("warmup job dropped")
				continue
			}
			queued++
		}
	}
	if queued > 0 {
		w.log.Info().Int("jobs", queued).Msg("prediction warmup queued")
	}
	return queued
}
