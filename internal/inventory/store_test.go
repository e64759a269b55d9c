package inventory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	mu        sync.Mutex
	mutations map[ChangeKind]int
	rejected  int
	failures  int
}

func (r *countingRecorder) Mutation(kind ChangeKind, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mutations == nil {
		r.mutations = make(map[ChangeKind]int)
	}
	if err != nil {
		r.rejected++
		return
	}
	r.mutations[kind]++
}

func (r *countingRecorder) PersistFailure() {
	r.mu.Lock()
	r.failures++
	r.mu.Unlock()
}

type failingKV struct {
	*MemoryKV
	saveErr error
}

func (f *failingKV) Save(context.Context, map[string][]byte) error { return f.saveErr }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, kv KV, rec Recorder) (*Store, *fakeClock) {
	t.Helper()
	clock := newClock()
	store := NewStore(kv, discardLogger(), StoreConfig{Env: clock.env(), Recorder: rec})
	require.NoError(t, store.Load(context.Background()))
	return store, clock
}

func TestStorePersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	rec := &countingRecorder{}
	store, _ := newTestStore(t, kv, rec)

	qty := 5
	item, _ := store.CreateItem(ctx, Draft{Name: "Tablet", Quantity: &qty, Price: decPtr(t, "100")})
	_, _, err := store.AdjustQuantity(ctx, item.ID, AdjustIn, 3)
	require.NoError(t, err)
	_, _, err = store.ChangeStatus(ctx, item.ID, StatusInUse)
	require.NoError(t, err)

	persisted, err := DecodeState(kv.Snapshot())
	require.NoError(t, err)
	require.Len(t, persisted.Items, 1)
	require.Equal(t, 8, persisted.Items[0].Quantity)
	require.Equal(t, StatusInUse, persisted.Items[0].Status)
	require.Len(t, persisted.Logs, 3)

	require.Equal(t, 1, rec.mutations[KindCreated])
	require.Equal(t, 1, rec.mutations[KindAdjusted])
	require.Equal(t, 1, rec.mutations[KindStatus])
	require.Zero(t, rec.failures)
}

func TestStoreRejectionLeavesStateAndStorageUntouched(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	rec := &countingRecorder{}
	store, _ := newTestStore(t, kv, rec)

	qty := 2
	item, _ := store.CreateItem(ctx, Draft{Name: "Lens", Quantity: &qty})
	before := kv.Snapshot()

	_, _, err := store.AdjustQuantity(ctx, item.ID, AdjustOut, 3)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.True(t, IsRejection(err))

	got, err := store.Item(item.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.Quantity)
	require.Len(t, store.Logs(0), 1)
	require.Equal(t, before, kv.Snapshot())
	require.Equal(t, 1, rec.rejected)
}

func TestStoreKeepsStateWhenPersistFails(t *testing.T) {
	ctx := context.Background()
	rec := &countingRecorder{}
	kv := &failingKV{MemoryKV: NewMemoryKV(), saveErr: errors.New("disk full")}
	store, _ := newTestStore(t, kv, rec)

	store.CreateItem(ctx, Draft{Name: "Amp"})
	require.Len(t, store.Items(), 1)
	require.Equal(t, 1, rec.failures)
	require.ErrorIs(t, store.PersistErr(), ErrPersist)
	require.ErrorContains(t, store.PersistErr(), "disk full")

	kv.saveErr = nil
	store.CreateItem(ctx, Draft{Name: "Cab"})
	require.NoError(t, store.PersistErr())
}

func TestStoreLoadRecoversFromMalformedBlob(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Save(context.Background(), map[string][]byte{
		ItemsKey: []byte(`[{"id":"a","name":"Kept","quantity":1,"price":"2","status":"Available"}]`),
		LogsKey:  []byte(`garbage`),
	}))

	store, _ := newTestStore(t, kv, nil)
	items := store.Items()
	require.Len(t, items, 1)
	require.Equal(t, "Kept", items[0].Name)
	require.Empty(t, store.Logs(0))
}

func TestStoreNotifiesSubscribers(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, NewMemoryKV(), nil)

	var changes []Change
	store.Subscribe(func(c Change) { changes = append(changes, c) })

	item, _ := store.CreateItem(ctx, Draft{Name: "Mic"})
	_, _, err := store.AdjustQuantity(ctx, item.ID, AdjustOut, 1)
	require.Error(t, err)
	store.RecordSync(ctx, "synced")

	require.Len(t, changes, 2)
	require.Equal(t, KindCreated, changes[0].Kind)
	require.Equal(t, []string{item.ID}, changes[0].ItemIDs)
	require.Equal(t, KindSynced, changes[1].Kind)
}

func TestStoreLogsLimitAndCopies(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, NewMemoryKV(), nil)
	for i := 0; i < 4; i++ {
		store.CreateItem(ctx, Draft{})
	}
	require.Len(t, store.Logs(2), 2)
	require.Len(t, store.Logs(0), 4)
	require.Len(t, store.Logs(10), 4)

	items := store.Items()
	items[0].Name = "mutated"
	require.NotEqual(t, "mutated", store.Items()[0].Name)
}

func TestStoreItemNotFound(t *testing.T) {
	store, _ := newTestStore(t, NewMemoryKV(), nil)
	_, err := store.Item("nope")
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestStoreSerializesConcurrentAdjustments(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryKV(), discardLogger(), StoreConfig{})
	qty := 50
	item, _ := store.CreateItem(ctx, Draft{Quantity: &qty})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = store.AdjustQuantity(ctx, item.ID, AdjustOut, 1)
		}()
	}
	wg.Wait()

	got, err := store.Item(item.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.Quantity)
	require.Len(t, store.Logs(0), 51)
}
