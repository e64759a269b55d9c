package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	analytichttp "github.com/kord-engine/kord/internal/analytics/http"
	"github.com/kord-engine/kord/internal/assistant"
	"github.com/kord-engine/kord/internal/inventory"
	"github.com/kord-engine/kord/internal/marketplace"
	"github.com/kord-engine/kord/internal/observability"
	"github.com/kord-engine/kord/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	InventoryHandler   *inventory.Handler
	AnalyticsHandler   *analytichttp.Handler
	MarketplaceHandler *marketplace.Handler
	AssistantHandler   *assistant.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with KORD defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	if !InTestMode() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		if params.InventoryHandler != nil {
			params.InventoryHandler.MountRoutes(r)
		}
		if params.AnalyticsHandler != nil {
			params.AnalyticsHandler.MountRoutes(r)
		}
		if params.MarketplaceHandler != nil {
			params.MarketplaceHandler.MountRoutes(r)
		}
		if params.AssistantHandler != nil {
			params.AssistantHandler.MountRoutes(r)
		}
	})
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
