package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/kord-engine/kord/internal/analytics"
	"github.com/kord-engine/kord/internal/inventory"
	jobmetrics "github.com/kord-engine/kord/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Snapshotter reloads persisted inventory state and exposes it.
type Snapshotter interface {
	Load(ctx context.Context) error
	Snapshot() inventory.State
}

// Digest is the outcome of one stock digest run.
type Digest struct {
	Items      int            `json:"items"`
	LowStock   []string       `json:"lowStock"`
	TotalValue string         `json:"totalValue"`
	TotalZar   string         `json:"totalValueZar"`
	Flow       inventory.Flow `json:"flow"`
}

// StockDigestJob reports low stock and inventory value on a schedule.
type StockDigestJob struct {
	Store   Snapshotter
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewStockDigestJob wires dependencies for the digest handler.
func NewStockDigestJob(store Snapshotter, logger *slog.Logger, metrics *jobmetrics.Metrics) *StockDigestJob {
	return &StockDigestJob{
		Store:   store,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes stock digest tasks.
func (j *StockDigestJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("stock digest: handler not configured")
	}
	var payload StockDigestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.WindowHours <= 0 {
		payload.WindowHours = 24
	}

	tracker := j.metrics().Track(TaskStockDigest)
	digest, err := j.Run(ctx, time.Duration(payload.WindowHours)*time.Hour)
	if err := tracker.End(err); err != nil {
		j.logger().Error("stock digest failed", slog.Any("error", err))
		return err
	}

	j.logger().Info("stock digest",
		slog.Int("items", digest.Items),
		slog.Int("low_stock", len(digest.LowStock)),
		slog.Any("low_stock_skus", digest.LowStock),
		slog.String("total_value", digest.TotalValue),
		slog.String("total_value_zar", digest.TotalZar),
		slog.Int("units_in", digest.Flow.Inflow),
		slog.Int("units_out", digest.Flow.Outflow),
		slog.Int("window_hours", payload.WindowHours))
	return nil
}

// Run reloads the store and computes the digest over the trailing window.
func (j *StockDigestJob) Run(ctx context.Context, window time.Duration) (Digest, error) {
	if err := j.Store.Load(ctx); err != nil {
		return Digest{}, err
	}
	snap := j.Store.Snapshot()
	low := inventory.LowStock(snap.Items)
	total := inventory.TotalValue(snap.Items)

	d := Digest{
		Items:      len(snap.Items),
		LowStock:   make([]string, 0, len(low)),
		TotalValue: analytics.FormatUSD(total),
		TotalZar:   analytics.FormatZAR(inventory.PriceZar(total)),
		Flow:       inventory.WindowedFlow(snap.Logs, j.now().Add(-window)),
	}
	for _, it := range low {
		d.LowStock = append(d.LowStock, it.SKU)
	}
	value, _ := total.Float64()
	j.metrics().RecordDigest(len(low), value)
	return d, nil
}

func (j *StockDigestJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *StockDigestJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *StockDigestJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
