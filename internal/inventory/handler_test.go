package inventory

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/kord-engine/kord/internal/platform/httpx"
)

func newTestRouter(t *testing.T) (http.Handler, *Store) {
	t.Helper()
	store, clock := newTestStore(t, NewMemoryKV(), nil)
	h := NewHandler(discardLogger(), store, nil)
	h.WithNow(func() time.Time { return clock.now })
	r := chi.NewRouter()
	r.Route("/api", h.MountRoutes)
	return r, store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandlerCreateAndFetchItem(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := do(t, router, http.MethodPost, "/api/items",
		`{"name":"Nintendo Switch","quantity":5,"minThreshold":5,"price":"100","category":"Gaming"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created struct {
		ID       string `json:"id"`
		PriceZar string `json:"priceZar"`
		Critical bool   `json:"critical"`
		Status   string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Equal(t, "1622", created.PriceZar)
	require.True(t, created.Critical)
	require.Equal(t, "Available", created.Status)

	rr = do(t, router, http.MethodGet, "/api/items/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, router, http.MethodGet, "/api/items/"+created.ID+"/logs", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"type":"CREATE"`)

	rr = do(t, router, http.MethodGet, "/api/items/missing", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandlerCreateRejectsInvalidDraft(t *testing.T) {
	router, store := newTestRouter(t)

	rr := do(t, router, http.MethodPost, "/api/items", `{"quantity":-1}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "Quantity")

	rr = do(t, router, http.MethodPost, "/api/items", `{"price":"-3"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodPost, "/api/items", `{not json`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Empty(t, store.Items())
}

func TestHandlerAdjustMapsRejections(t *testing.T) {
	router, store := newTestRouter(t)
	qty := 2
	item, _ := store.CreateItem(t.Context(), Draft{Name: "Lens", Quantity: &qty, Price: decPtr(t, "10")})

	rr := do(t, router, http.MethodPost, "/api/items/"+item.ID+"/adjust", `{"mode":"OUT","amount":5}`)
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, router, http.MethodPost, "/api/items/"+item.ID+"/adjust", `{"mode":"OUT","amount":0}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodPost, "/api/items/"+item.ID+"/adjust", `{"mode":"UP","amount":1}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodPost, "/api/items/nope/adjust", `{"mode":"IN","amount":1}`)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, router, http.MethodPost, "/api/items/"+item.ID+"/adjust", `{"mode":"IN","amount":3}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Item struct {
			Quantity int `json:"quantity"`
		} `json:"item"`
		Log struct {
			Delta int    `json:"delta"`
			Value string `json:"value"`
		} `json:"log"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, 5, resp.Item.Quantity)
	require.Equal(t, 3, resp.Log.Delta)
	require.Equal(t, "30", resp.Log.Value)
	require.Len(t, store.Logs(0), 2)
}

func TestHandlerChangeStatus(t *testing.T) {
	router, store := newTestRouter(t)
	item, _ := store.CreateItem(t.Context(), Draft{Name: "Drone"})

	rr := do(t, router, http.MethodPost, "/api/items/"+item.ID+"/status", `{"status":"In Use"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	got, err := store.Item(item.ID)
	require.NoError(t, err)
	require.Equal(t, StatusInUse, got.Status)

	rr = do(t, router, http.MethodPost, "/api/items/"+item.ID+"/status", `{"status":"Broken"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodPost, "/api/items/"+item.ID+"/status", `{}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerBulkReplace(t *testing.T) {
	router, store := newTestRouter(t)
	store.CreateItem(t.Context(), Draft{Name: "Old"})

	rr := do(t, router, http.MethodPut, "/api/items",
		`{"items":[{"id":"x1","name":"New","sku":"N-1","quantity":3,"minThreshold":1,"price":"2","status":"Available"}]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	items := store.Items()
	require.Len(t, items, 1)
	require.Equal(t, "x1", items[0].ID)
	require.True(t, items[0].PriceZar.Equal(dec(t, "32.44")))
	require.Len(t, store.Logs(0), 1)

	rr = do(t, router, http.MethodPut, "/api/items", `{"items":[{"id":"","status":"Available"}]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerSearchAndList(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := t.Context()
	store.CreateItem(ctx, Draft{Name: "PlayStation 5", Category: "Gaming", Price: decPtr(t, "499")})
	store.CreateItem(ctx, Draft{Name: "Canon R6", Category: "Cameras", Price: decPtr(t, "2100")})

	rr := do(t, router, http.MethodGet, "/api/items?q=canon", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "Canon R6")
	require.NotContains(t, rr.Body.String(), "PlayStation")

	rr = do(t, router, http.MethodPost, "/api/search", `{"categories":["Gaming"],"maxPrice":"500","recency":"today"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"count":1`)

	rr = do(t, router, http.MethodPost, "/api/search", `{"recency":"decade"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodGet, "/api/logs?limit=1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var logs struct {
		Logs []LogEntry `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &logs))
	require.Len(t, logs.Logs, 1)
	require.Equal(t, "Canon R6", logs.Logs[0].ItemName)

	rr = do(t, router, http.MethodGet, "/api/logs?limit=abc", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodGet, "/api/logs?page=2&perPage=1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var paged struct {
		Logs       []LogEntry       `json:"logs"`
		Pagination httpx.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &paged))
	require.Len(t, paged.Logs, 1)
	require.Equal(t, "PlayStation 5", paged.Logs[0].ItemName)
	require.Equal(t, httpx.Pagination{Page: 2, PerPage: 1, Total: 2, TotalPages: 2}, paged.Pagination)

	rr = do(t, router, http.MethodGet, "/api/logs?page=4611686018427387904&perPage=20", "")
	require.Equal(t, http.StatusOK, rr.Code)
	paged.Logs = nil
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &paged))
	require.Empty(t, paged.Logs)
	require.Equal(t, 2, paged.Pagination.Total)

	rr = do(t, router, http.MethodGet, "/api/logs?perPage=0", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "Musical Instruments")
}
