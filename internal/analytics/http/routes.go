// Package analytichttp exposes dashboard and report endpoints.
package analytichttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers analytics endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/dashboard", h.handleDashboard)
	r.Get("/reports/categories", h.handleCategoryReport)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/reports/categories.csv", h.handleCategoryCSV)
		gr.Get("/reports/logs.csv", h.handleLogCSV)
	})
}
