// Package analytics assembles dashboard and report views from inventory state.
package analytics

import (
	"context"
	"time"

	"github.com/kord-engine/kord/internal/inventory"
)

// Source exposes the inventory snapshot the views are computed from.
type Source interface {
	Snapshot() inventory.State
}

// SyncStatus reports the last completed marketplace synchronization.
type SyncStatus interface {
	LastSync() (time.Time, bool)
}

// Service coordinates view assembly with the cache layer.
type Service struct {
	source Source
	sync   SyncStatus
	cache  *Cache
	now    func() time.Time
}

// NewService wires a Source with a Cache helper. sync may be nil.
func NewService(source Source, sync SyncStatus, cache *Cache) *Service {
	return &Service{
		source: source,
		sync:   sync,
		cache:  cache,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// ActivityLog returns the full activity log, newest first. It is never cached.
func (s *Service) ActivityLog(_ context.Context) ([]inventory.LogEntry, error) {
	return s.source.Snapshot().Logs, nil
}
