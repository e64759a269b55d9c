package marketplace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kord-engine/kord/internal/inventory"
	"github.com/kord-engine/kord/internal/platform/gate"
)

// Ledger records the completion of a sync. *inventory.Store satisfies it.
type Ledger interface {
	RecordSync(ctx context.Context, metadata string) inventory.LogEntry
}

// Recorder receives sync instrumentation.
type Recorder interface {
	Sync(outcome string, elapsed time.Duration)
}

// Config bounds a sync run.
type Config struct {
	// Delay simulates the round trip to the platforms.
	Delay time.Duration
	// Timeout caps the whole run; zero disables it.
	Timeout time.Duration
}

// Result describes a completed sync.
type Result struct {
	Platforms   []Platform         `json:"platforms"`
	CompletedAt time.Time          `json:"completedAt"`
	Log         inventory.LogEntry `json:"log"`
}

// Status is the externally visible sync state.
type Status struct {
	Platforms  []Platform `json:"platforms"`
	InProgress bool       `json:"inProgress"`
	LastSync   *time.Time `json:"lastSync,omitempty"`
}

// Syncer runs at most one simulated sync at a time.
type Syncer struct {
	gate     *gate.Gate
	ledger   Ledger
	logger   *slog.Logger
	recorder Recorder
	cfg      Config
	now      func() time.Time

	mu       sync.RWMutex
	lastSync time.Time
}

// NewSyncer wires the sync runner. recorder may be nil.
func NewSyncer(ledger Ledger, logger *slog.Logger, recorder Recorder, cfg Config) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		gate:     gate.New("marketplace_sync"),
		ledger:   ledger,
		logger:   logger,
		recorder: recorder,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Sync waits out the simulated delay and then appends the sync log entry. A
// call made while another sync holds the gate fails with ErrSyncInProgress.
// If ctx ends or the timeout elapses first, nothing is recorded.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	start := s.now()
	var result Result
	err := s.gate.Run(ctx, s.cfg.Timeout, func(ctx context.Context) error {
		s.logger.Info("marketplace sync started", slog.Int("platforms", len(Platforms)))
		if err := wait(ctx, s.cfg.Delay); err != nil {
			return fmt.Errorf("marketplace: sync: %w", err)
		}
		entry := s.ledger.RecordSync(ctx, SyncMetadata)
		s.mu.Lock()
		s.lastSync = entry.Timestamp
		s.mu.Unlock()
		result = Result{Platforms: Platforms, CompletedAt: entry.Timestamp, Log: entry}
		return nil
	})
	elapsed := s.now().Sub(start)

	switch {
	case errors.Is(err, gate.ErrBusy):
		s.observe("rejected", elapsed)
		return Result{}, ErrSyncInProgress
	case err != nil:
		s.logger.Warn("marketplace sync aborted", slog.Any("error", err), slog.Duration("elapsed", elapsed))
		s.observe("aborted", elapsed)
		return Result{}, err
	}
	s.logger.Info("marketplace sync complete", slog.Duration("elapsed", elapsed))
	s.observe("ok", elapsed)
	return result, nil
}

// LastSync reports when the last sync completed in this process.
func (s *Syncer) LastSync() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync, !s.lastSync.IsZero()
}

// InProgress reports whether a sync is running.
func (s *Syncer) InProgress() bool {
	return s.gate.InProgress()
}

// Status snapshots the sync state.
func (s *Syncer) Status() Status {
	st := Status{Platforms: Platforms, InProgress: s.InProgress()}
	if at, ok := s.LastSync(); ok {
		st.LastSync = &at
	}
	return st
}

func (s *Syncer) observe(outcome string, elapsed time.Duration) {
	if s.recorder != nil {
		s.recorder.Sync(outcome, elapsed)
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
