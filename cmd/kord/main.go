package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/kord-engine/kord/internal/analytics"
	analytichttp "github.com/kord-engine/kord/internal/analytics/http"
	"github.com/kord-engine/kord/internal/app"
	"github.com/kord-engine/kord/internal/assistant"
	"github.com/kord-engine/kord/internal/inventory"
	"github.com/kord-engine/kord/internal/marketplace"
	"github.com/kord-engine/kord/internal/observability"
	"github.com/kord-engine/kord/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	if app.ApplyTestMode(cfg) {
		slog.Default().Info("test mode detected, using in-memory backend")
	}

	logger := app.NewLogger(cfg)

	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store backend", slog.Any("error", err))
		os.Exit(1)
	}
	defer backend.Close()

	metrics := observability.NewMetrics()

	categories, err := inventory.LoadCategories(cfg.CategoryConfigPath)
	if err != nil {
		logger.Error("load categories", slog.Any("error", err))
		os.Exit(1)
	}

	store := inventory.NewStore(backend.KV, logger, inventory.StoreConfig{Recorder: metrics})
	if err := store.Load(ctx); err != nil {
		logger.Error("load inventory", slog.Any("error", err))
		os.Exit(1)
	}

	analyticsCache := analytics.NewCache(backend.Redis, cfg.AnalyticsCacheTTL)
	store.Subscribe(analyticsCache.Observer(logger))
	if err := analyticsCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("analytics invalidation listener", slog.Any("error", err))
	}

	syncer := marketplace.NewSyncer(store, logger, metrics, marketplace.Config{
		Delay:   cfg.MarketplaceSyncDelay,
		Timeout: cfg.MarketplaceSyncTimeout,
	})
	analyticsService := analytics.NewService(store, syncer, analyticsCache)

	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, assistant replies will use fallbacks")
	}
	generator := assistant.NewClient(cfg.GeminiEndpoint, cfg.GeminiModel, cfg.GeminiAPIKey)
	assistantService := assistant.NewService(generator, logger, metrics, cfg.AssistantTimeout)

	jobHandler := jobs.NewHandler(nil, logger)
	if backend.Redis != nil {
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		inspector := asynq.NewInspector(redisOpts)
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)

		jobClient, err := jobs.NewClient(redisOpts)
		if err != nil {
			logger.Error("init job client", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = jobClient.Close() }()
		store.Subscribe(func(change inventory.Change) {
			if change.Kind != inventory.KindReplaced {
				return
			}
			if _, err := jobClient.EnqueueAnalyticsWarmup(ctx, "bulk_replace"); err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
				logger.Warn("enqueue analytics warmup", slog.Any("error", err))
			}
		})
	}

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Metrics:            metrics,
		InventoryHandler:   inventory.NewHandler(logger, store, categories),
		AnalyticsHandler:   analytichttp.NewHandler(logger, analyticsService),
		MarketplaceHandler: marketplace.NewHandler(logger, syncer, store),
		AssistantHandler:   assistant.NewHandler(logger, assistantService, store),
		JobHandler:         jobHandler,
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("backend", cfg.StoreBackend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
