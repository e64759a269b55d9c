package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/kord-engine/kord/internal/analytics"
	"github.com/kord-engine/kord/internal/app"
	"github.com/kord-engine/kord/internal/inventory"
	"github.com/kord-engine/kord/internal/observability"
	"github.com/kord-engine/kord/jobs"
)

const warmupCron = "*/15 * * * *"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.StoreBackend == app.BackendMemory {
		slog.Default().Error("worker needs a shared store backend, STORE_BACKEND=memory is process-local")
		os.Exit(1)
	}

	logger := app.NewLogger(cfg).With(slog.String("process", "worker"))

	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store backend", slog.Any("error", err))
		os.Exit(1)
	}
	defer backend.Close()
	if backend.Redis == nil {
		logger.Error("worker needs redis for the job queue", slog.String("addr", cfg.RedisAddr))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	store := inventory.NewStore(backend.KV, logger, inventory.StoreConfig{Recorder: metrics})
	analyticsService := analytics.NewService(store, nil, analytics.NewCache(backend.Redis, cfg.AnalyticsCacheTTL))

	digestJob := jobs.NewStockDigestJob(store, logger, metrics.Jobs())
	warmupJob := jobs.NewAnalyticsWarmupJob(store, analyticsService, logger, metrics.Jobs())

	digestTask, err := jobs.NewStockDigestTask(time.Time{}, 24)
	if err != nil {
		logger.Error("build digest task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewAnalyticsWarmupTask("scheduled")
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskStockDigest, Handler: digestJob.Handle},
			{Type: jobs.TaskAnalyticsWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.DigestCron, Task: digestTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: warmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
