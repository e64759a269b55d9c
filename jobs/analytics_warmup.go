package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/kord-engine/kord/internal/analytics"
	jobmetrics "github.com/kord-engine/kord/internal/jobs"
)

// Warmer computes the cached analytics views.
type Warmer interface {
	Dashboard(ctx context.Context) (analytics.Dashboard, error)
	CategoryReport(ctx context.Context) (analytics.Report, error)
}

// AnalyticsWarmupJob pre-populates the analytics cache after a reload.
type AnalyticsWarmupJob struct {
	Store     Snapshotter
	Analytics Warmer
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewAnalyticsWarmupJob wires dependencies for the warmup handler.
func NewAnalyticsWarmupJob(store Snapshotter, warmer Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *AnalyticsWarmupJob {
	return &AnalyticsWarmupJob{Store: store, Analytics: warmer, Logger: logger, Metrics: metrics}
}

// Handle processes analytics warmup tasks.
func (j *AnalyticsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Analytics == nil {
		return errors.New("analytics warmup: handler not configured")
	}
	var payload AnalyticsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Reason == "" {
		payload.Reason = "scheduled"
	}

	tracker := j.metrics().Track(TaskAnalyticsWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("reason", payload.Reason))
	start := time.Now()

	if j.Store != nil {
		if err := j.Store.Load(ctx); err != nil {
			resultErr = err
			logger.Error("reload inventory", slog.Any("error", err))
			return resultErr
		}
	}

	warmCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	if _, err := j.Analytics.Dashboard(warmCtx); err != nil {
		resultErr = err
		logger.Error("warm dashboard", slog.Any("error", err))
		return resultErr
	}
	if _, err := j.Analytics.CategoryReport(warmCtx); err != nil {
		resultErr = err
		logger.Error("warm category report", slog.Any("error", err))
		return resultErr
	}

	logger.Info("analytics warmed", slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *AnalyticsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *AnalyticsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
