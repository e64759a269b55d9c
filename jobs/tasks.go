package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStockDigest summarises stock health and publishes the gauges.
	TaskStockDigest = "inventory:stock_digest"
	// TaskAnalyticsWarmup pre-computes the cached dashboard and category report.
	TaskAnalyticsWarmup = "analytics:warmup"
)

// StockDigestPayload carries scheduling metadata for the digest.
type StockDigestPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
	WindowHours  int       `json:"window_hours"`
}

// NewStockDigestTask constructs the digest task. A non-positive window
// falls back to 24 hours.
func NewStockDigestTask(at time.Time, windowHours int) (*asynq.Task, error) {
	if windowHours <= 0 {
		windowHours = 24
	}
	body, err := json.Marshal(StockDigestPayload{ScheduledFor: at, WindowHours: windowHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockDigest, body, asynq.Queue(QueueDefault)), nil
}

// AnalyticsWarmupPayload names the reason the warmup was requested.
type AnalyticsWarmupPayload struct {
	Reason string `json:"reason"`
}

// NewAnalyticsWarmupTask constructs the warmup task.
func NewAnalyticsWarmupTask(reason string) (*asynq.Task, error) {
	body, err := json.Marshal(AnalyticsWarmupPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsWarmup, body, asynq.Queue(QueueDefault)), nil
}
