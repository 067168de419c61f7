// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/config"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/adapter"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/repository"
	aiAdapters "github.com/octaveluka/BETIQ-AI-sub000/internal/infra/adapters/ai"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/adapters/football"
	pg "github.com/octaveluka/BETIQ-AI-sub000/internal/infra/db/postgres"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/i18n"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/identity"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/logging"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/memory"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/metrics"
	red "github.com/octaveluka/BETIQ-AI-sub000/internal/infra/redis"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/sched"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/web"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/worker"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/usecase"
)

// set with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (memory stores, noop AI, relaxed auth)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres (optional) ----
	var pool *pgxpool.Pool
	if cfg.Database.URL != "" {
		pool, err = pg.NewPgxPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		if err := pg.Migrate(ctx, pool, logger); err != nil {
			logger.Fatal().Err(err).Msg("migrations")
		}
	}

	// ---- Redis (optional) ----
	var redisClient *red.Client
	if cfg.Redis.URL != "" {
		redisClient, err = red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
	}

	// ---- Entitlement store ----
	var store repository.EntitlementStore
	switch cfg.VIP.Store {
	case config.StoreRedis:
		store = red.NewEntitlementStore(redisClient, cfg.VIP.KeyPrefix)
	case config.StorePostgres:
		store = pg.NewEntitlementRepo(pool)
	default:
		logger.Warn().Msg("vip.store=memory: entitlements are lost on restart")
		store = memory.NewEntitlementStore()
	}

	// ---- Prediction cache, lock, redeem limiter ----
	var (
		cache   repository.PredictionCache
		locker  repository.Locker
		limiter repository.RateLimiter
	)
	if redisClient != nil {
		cache = red.NewPredictionCache(redisClient, cfg.Redis.TTL)
		locker = red.NewLocker(redisClient)
		limiter = red.NewRateLimiter(redisClient)
	} else {
		cache = memory.NewPredictionCache(cfg.Redis.TTL)
		limiter = memory.NewRateLimiter()
	}

	// ---- Access codes ----
	codes, err := loadCodes(ctx, cfg, pool)
	if err != nil {
		logger.Fatal().Err(err).Msg("access codes")
	}
	validator := usecase.NewCodeValidator(cfg.VIP.AdminCode, codes, time.Now, logger)
	logger.Info().Int("codes", validator.Size()).Msg("access codes loaded")

	// ---- AI adapters ----
	ai, err := buildAI(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("ai adapter")
	}

	tr, err := i18n.NewEmbeddedBundle()
	if err != nil {
		logger.Fatal().Err(err).Msg("i18n")
	}

	// ---- Use cases ----
	entUC := usecase.NewEntitlementUseCase(store, validator, cfg.VIP.Window, time.Now, logger, cfg.Runtime.Dev)
	classifier := usecase.NewMatchClassifier(cfg.VIP.EliteTeams)
	matchUC := usecase.NewMatchUseCase(football.NewClient(cfg.Football, logger), classifier, cfg.Football.Leagues, logger)
	predUC := usecase.NewPredictionUseCase(ai, cache, locker, tr, usecase.PredictionConfig{
		Model:      cfg.AI.DefaultModel,
		MaxRetries: cfg.AI.MaxRetries,
	}, logger)
	gate := usecase.NewContentGate(cfg.HTTP.UpgradePath)

	// ---- Warmup ----
	workers := worker.NewPool(cfg.Scheduler.Workers, logger)
	workers.Start(ctx)
	warmup := sched.NewWarmupWorker(cfg.Scheduler.WarmupInterval, matchUC, predUC, workers, cfg.Scheduler.WarmPredictions, logger)
	go func() {
		if err := warmup.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("warmup worker stopped")
		}
	}()

	// ---- HTTP ----
	srv := web.NewServer(web.Deps{
		Entitlements:   entUC,
		Matches:        matchUC,
		Predictions:    predUC,
		Gate:           gate,
		Identity:       identity.NewVerifier(cfg.Auth, cfg.Runtime.Dev, logger),
		Translator:     tr,
		Auth:           web.NewAuthManager(cfg.Auth),
		Limiter:        limiter,
		RedeemLimit:    cfg.VIP.RedeemLimit,
		RedeemWindow:   cfg.VIP.RedeemWindow,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Dev:            cfg.Runtime.Dev,
	}, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Str("store", cfg.VIP.Store).Str("ai", ai.Provider()).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	cancel()
	workers.Stop()
}

// buildAI assembles the provider chain: every configured provider behind a
// model router, capped by the concurrency limiter. Dev mode without keys gets the noop adapter.
func buildAI(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (adapter.AIServiceAdapter, error) {
	byProvider := map[string]adapter.AIServiceAdapter{}
	defaultProvider := ""

	if cfg.AI.MetisKey != "" {
		a, err := aiAdapters.NewMetisAdapter(cfg.AI.MetisKey, cfg.AI.DefaultModel, cfg.AI.MetisBaseURL, cfg.AI.MaxOutputTokens, cfg.AI.Timeout, logger)
		if err != nil {
			return nil, fmt.Errorf("metis: %w", err)
		}
		byProvider["metis"] = a
		defaultProvider = "metis"
	}
	if cfg.AI.GeminiKey != "" {
		a, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel, cfg.AI.MaxOutputTokens)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		byProvider["gemini"] = a
		if defaultProvider == "" {
			defaultProvider = "gemini"
		}
	}
	if cfg.AI.OpenAIKey != "" {
		a, err := aiAdapters.NewOpenAIAdapter(aiAdapters.OpenAIOptions{
			APIKey:    cfg.AI.OpenAIKey,
			Model:     cfg.AI.DefaultModel,
			MaxOutput: cfg.AI.MaxOutputTokens,
			Timeout:   cfg.AI.Timeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		byProvider["openai"] = a
		if defaultProvider == "" {
			defaultProvider = "openai"
		}
	}

	if len(byProvider) == 0 {
		if !cfg.Runtime.Dev {
			logger.Warn().Msg("no AI provider configured: every prediction will be the fallback bundle")
		}
		return aiAdapters.NewNoopAIAdapter(logger), nil
	}
	multi := aiAdapters.NewMultiAIAdapter(defaultProvider, byProvider, cfg.AI.ModelProviders)
	return aiAdapters.NewLimitedAI(multi, cfg.AI.ConcurrentLimit), nil
}

// loadCodes merges the codes from config, the optional codes file and,
// when enabled, the access_codes table. Duplicates are left to the validator.
func loadCodes(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) ([]string, error) {
	codes := append([]string(nil), cfg.VIP.Codes...)

	if cfg.VIP.CodesFile != "" {
		f, err := os.Open(cfg.VIP.CodesFile)
		if err != nil {
			return nil, fmt.Errorf("open codes file: %w", err)
		}
		fromFile, err := usecase.ParseCodeList(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read codes file: %w", err)
		}
		codes = append(codes, fromFile...)
	}

	if cfg.VIP.LoadFromDB && pool != nil {
		fromDB, err := pg.NewAccessCodeRepo(pool).ListCodes(ctx, repository.NoTX)
		if err != nil {
			return nil, fmt.Errorf("list access codes: %w", err)
		}
		codes = append(codes, fromDB...)
	}
	return codes, nil
}
