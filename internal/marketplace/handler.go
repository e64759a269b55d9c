package marketplace

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kord-engine/kord/internal/inventory"
	"github.com/kord-engine/kord/internal/platform/httpx"
)

// ItemSource lists the current items.
type ItemSource interface {
	Items() []inventory.Item
}

// Handler exposes sync status and the sync trigger.
type Handler struct {
	logger *slog.Logger
	syncer *Syncer
	items  ItemSource
}

// NewHandler constructs the marketplace handler.
func NewHandler(logger *slog.Logger, syncer *Syncer, items ItemSource) *Handler {
	return &Handler{logger: logger, syncer: syncer, items: items}
}

// MountRoutes registers marketplace routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/marketplaces", h.status)
	r.Post("/marketplaces/sync", h.sync)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"sync":  h.syncer.Status(),
		"board": Board(h.items.Items()),
	})
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.syncer.Sync(r.Context())
	switch {
	case err == nil:
		httpx.JSON(w, http.StatusOK, result)
	case errors.Is(err, context.DeadlineExceeded):
		httpx.Problem(w, http.StatusGatewayTimeout, "Sync Timed Out", "marketplace sync did not finish in time")
	default:
		if !errors.Is(err, ErrSyncInProgress) {
			h.logger.Error("marketplace sync failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}
