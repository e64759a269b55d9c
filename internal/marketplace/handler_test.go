package marketplace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestHandlerSyncAndStatus(t *testing.T) {
	store := newStore(t)
	syncer := NewSyncer(store, discard(), nil, Config{Delay: time.Millisecond})
	r := chi.NewRouter()
	r.Route("/api", NewHandler(discard(), syncer, store).MountRoutes)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/marketplaces", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"inProgress":false`)
	require.NotContains(t, rr.Body.String(), "lastSync")

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/marketplaces/sync", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "Marketplace Ecosystem")

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/marketplaces", nil))
	require.Contains(t, rr.Body.String(), "lastSync")
}

func TestHandlerSyncBusyAndTimeout(t *testing.T) {
	store := newStore(t)
	syncer := NewSyncer(store, discard(), nil, Config{Delay: 200 * time.Millisecond})
	r := chi.NewRouter()
	r.Route("/api", NewHandler(discard(), syncer, store).MountRoutes)

	go func() { _, _ = syncer.Sync(context.Background()) }()
	require.Eventually(t, syncer.InProgress, time.Second, 5*time.Millisecond)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/marketplaces/sync", nil))
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.Eventually(t, func() bool { return !syncer.InProgress() }, time.Second, 5*time.Millisecond)

	syncer.cfg.Timeout = 10 * time.Millisecond
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/marketplaces/sync", nil))
	require.Equal(t, http.StatusGatewayTimeout, rr.Code)
}
