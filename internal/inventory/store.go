package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// ChangeKind names the mutation that produced a Change.
type ChangeKind string

const (
	KindCreated  ChangeKind = "create"
	KindAdjusted ChangeKind = "adjust"
	KindStatus   ChangeKind = "status"
	KindReplaced ChangeKind = "bulk_replace"
	KindSynced   ChangeKind = "sync"
)

// Change is delivered to subscribers after every successful mutation.
type Change struct {
	Kind    ChangeKind
	ItemIDs []string
	At      time.Time
}

// Recorder receives store instrumentation events.
type Recorder interface {
	Mutation(kind ChangeKind, err error)
	PersistFailure()
}

// StoreConfig groups optional settings.
type StoreConfig struct {
	Env            Env
	Recorder       Recorder
	PersistTimeout time.Duration
}

// Store owns the item and log collections and mirrors them to a KV after
// every successful mutation. Mutations are serialized.
type Store struct {
	mu             sync.RWMutex
	state          State
	kv             KV
	env            Env
	logger         *slog.Logger
	recorder       Recorder
	persistTimeout time.Duration
	persistErr     error

	obsMu     sync.Mutex
	observers []func(Change)
}

// NewStore builds an empty Store. Call Load to pull persisted state.
func NewStore(kv KV, logger *slog.Logger, cfg StoreConfig) *Store {
	env := cfg.Env
	def := DefaultEnv()
	if env.Now == nil {
		env.Now = def.Now
	}
	if env.NewID == nil {
		env.NewID = def.NewID
	}
	if env.NewSKU == nil {
		env.NewSKU = def.NewSKU
	}
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.PersistTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Store{
		state:          State{Items: []Item{}, Logs: []LogEntry{}},
		kv:             kv,
		env:            env,
		logger:         logger,
		recorder:       cfg.Recorder,
		persistTimeout: timeout,
	}
}

// Load replaces in-memory state with the persisted collections. Malformed
// blobs are logged and reset to empty; only storage read errors are returned.
func (s *Store) Load(ctx context.Context) error {
	blobs, err := s.kv.Load(ctx, ItemsKey, LogsKey)
	if err != nil {
		return err
	}
	state, err := DecodeState(blobs)
	if err != nil {
		s.logger.Warn("stored state malformed, resetting affected collections", slog.Any("error", err))
	}
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.logger.Info("inventory store loaded",
		slog.Int("items", len(state.Items)),
		slog.Int("logs", len(state.Logs)))
	return nil
}

// Subscribe registers fn to receive every Change. fn runs synchronously
// after the store lock is released.
func (s *Store) Subscribe(fn func(Change)) {
	if fn == nil {
		return
	}
	s.obsMu.Lock()
	s.observers = append(s.observers, fn)
	s.obsMu.Unlock()
}

// Snapshot returns copies of both collections.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{Items: slices.Clone(s.state.Items), Logs: slices.Clone(s.state.Logs)}
}

// Items returns a copy of the item collection.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Items)
}

// Logs returns up to limit entries, newest first. limit <= 0 returns all.
func (s *Store) Logs(limit int) []LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	logs := s.state.Logs
	if limit > 0 && limit < len(logs) {
		logs = logs[:limit]
	}
	return slices.Clone(logs)
}

// Item looks up one item by id.
func (s *Store) Item(id string) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := FindItem(s.state.Items, id)
	if idx < 0 {
		return Item{}, ErrItemNotFound
	}
	return s.state.Items[idx], nil
}

// CreateItem registers a new item from d.
func (s *Store) CreateItem(ctx context.Context, d Draft) (Item, LogEntry) {
	s.mu.Lock()
	next, item, entry := CreateItem(s.state, d, s.env)
	s.commitLocked(ctx, next)
	s.mu.Unlock()

	s.record(KindCreated, nil)
	s.notify(Change{Kind: KindCreated, ItemIDs: []string{item.ID}, At: entry.Timestamp})
	return item, entry
}

// AdjustQuantity moves stock in or out of an item.
func (s *Store) AdjustQuantity(ctx context.Context, itemID string, mode AdjustMode, amount int) (Item, LogEntry, error) {
	s.mu.Lock()
	next, entry, err := AdjustQuantity(s.state, itemID, mode, amount, s.env)
	if err != nil {
		s.mu.Unlock()
		s.reject(KindAdjusted, itemID, err)
		return Item{}, LogEntry{}, err
	}
	s.commitLocked(ctx, next)
	item := next.Items[FindItem(next.Items, itemID)]
	s.mu.Unlock()

	s.record(KindAdjusted, nil)
	s.notify(Change{Kind: KindAdjusted, ItemIDs: []string{itemID}, At: entry.Timestamp})
	return item, entry, nil
}

// ChangeStatus moves an item to a new lifecycle status.
func (s *Store) ChangeStatus(ctx context.Context, itemID string, status Status) (Item, LogEntry, error) {
	s.mu.Lock()
	next, entry, err := ChangeStatus(s.state, itemID, status, s.env)
	if err != nil {
		s.mu.Unlock()
		s.reject(KindStatus, itemID, err)
		return Item{}, LogEntry{}, err
	}
	s.commitLocked(ctx, next)
	item := next.Items[FindItem(next.Items, itemID)]
	s.mu.Unlock()

	s.record(KindStatus, nil)
	s.notify(Change{Kind: KindStatus, ItemIDs: []string{itemID}, At: entry.Timestamp})
	return item, entry, nil
}

// BulkReplace overwrites the item collection. No log entries are written.
func (s *Store) BulkReplace(ctx context.Context, items []Item) ([]Item, error) {
	s.mu.Lock()
	next, err := BulkReplace(s.state, items, s.env)
	if err != nil {
		s.mu.Unlock()
		s.reject(KindReplaced, "", err)
		return nil, err
	}
	s.commitLocked(ctx, next)
	s.mu.Unlock()

	ids := make([]string, len(next.Items))
	for i, it := range next.Items {
		ids[i] = it.ID
	}
	s.record(KindReplaced, nil)
	s.notify(Change{Kind: KindReplaced, ItemIDs: ids, At: s.env.Now()})
	return slices.Clone(next.Items), nil
}

// RecordSync appends the marketplace synchronization entry.
func (s *Store) RecordSync(ctx context.Context, metadata string) LogEntry {
	s.mu.Lock()
	next, entry := RecordSync(s.state, metadata, s.env)
	s.commitLocked(ctx, next)
	s.mu.Unlock()

	s.record(KindSynced, nil)
	s.notify(Change{Kind: KindSynced, At: entry.Timestamp})
	return entry
}

// PersistErr returns the outcome of the most recent write, wrapped in
// ErrPersist, or nil when it succeeded. Callers without a long-lived process
// use it to tell whether a mutation reached the KV.
func (s *Store) PersistErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistErr
}

// commitLocked installs next and writes it through. A failed write is logged,
// counted and kept for PersistErr; the applied state is kept.
func (s *Store) commitLocked(ctx context.Context, next State) {
	s.state = next
	s.persistErr = nil
	blobs, err := EncodeState(next)
	if err == nil {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
		err = s.kv.Save(writeCtx, blobs)
		cancel()
	}
	if err != nil {
		s.persistErr = fmt.Errorf("%w: %w", ErrPersist, err)
		s.logger.Error("persist inventory state", slog.Any("error", err))
		if s.recorder != nil {
			s.recorder.PersistFailure()
		}
	}
}

func (s *Store) reject(kind ChangeKind, itemID string, err error) {
	s.logger.Info("inventory mutation rejected",
		slog.String("kind", string(kind)),
		slog.String("item_id", itemID),
		slog.Any("error", err))
	s.record(kind, err)
}

func (s *Store) record(kind ChangeKind, err error) {
	if s.recorder != nil {
		s.recorder.Mutation(kind, err)
	}
}

func (s *Store) notify(change Change) {
	s.obsMu.Lock()
	observers := slices.Clone(s.observers)
	s.obsMu.Unlock()
	for _, fn := range observers {
		fn(change)
	}
}

// IsRejection reports whether err is an expected domain rejection rather than
// an infrastructure failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidMode) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidItem)
}
