// Package gate implements a single-slot, non-queuing gate for long running
// operations that must not overlap (marketplace sync, assistant calls).
package gate

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/kord-engine/kord/internal/platform/httpx"
)

// ErrBusy is returned when the gate is already held.
var ErrBusy = fmt.Errorf("gate: %w", httpx.ErrBusy)

// Gate admits at most one holder. A second caller is rejected, never queued.
type Gate struct {
	sem  *semaphore.Weighted
	held atomic.Bool
	name string
}

// New constructs a named gate.
func New(name string) *Gate {
	return &Gate{sem: semaphore.NewWeighted(1), name: name}
}

// Name returns the gate label used in logs and metrics.
func (g *Gate) Name() string {
	return g.name
}

// InProgress reports whether an operation currently holds the gate.
func (g *Gate) InProgress() bool {
	return g.held.Load()
}

// Run executes fn while holding the gate. fn receives a context bounded by
// timeout (when positive). The gate is released on every return path,
// including panics in fn.
func (g *Gate) Run(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	if !g.sem.TryAcquire(1) {
		return ErrBusy
	}
	g.held.Store(true)
	defer func() {
		g.held.Store(false)
		g.sem.Release(1)
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx)
}
