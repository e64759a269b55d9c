package inventory

import (
	"context"
	"maps"
	"sync"
)

// Storage keys of the two persisted collections.
const (
	ItemsKey = "items-store"
	LogsKey  = "logs-store"
)

// KV is the durable key/value storage behind the Store. Save must write all
// supplied keys atomically.
type KV interface {
	Load(ctx context.Context, keys ...string) (map[string][]byte, error)
	Save(ctx context.Context, blobs map[string][]byte) error
}

// MemoryKV keeps blobs in process memory. Used for development and tests.
type MemoryKV struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemoryKV builds an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{blobs: make(map[string][]byte)}
}

// Load returns the blobs present for keys; missing keys are omitted.
func (m *MemoryKV) Load(_ context.Context, keys ...string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.blobs[k]; ok {
			out[k] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

// Save stores every blob under one lock.
func (m *MemoryKV) Save(_ context.Context, blobs map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range blobs {
		m.blobs[k] = append([]byte(nil), v...)
	}
	return nil
}

// Snapshot copies the stored blobs.
func (m *MemoryKV) Snapshot() map[string][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.blobs)
}
