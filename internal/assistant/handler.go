package assistant

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kord-engine/kord/internal/inventory"
	"github.com/kord-engine/kord/internal/platform/httpx"
)

// ItemSource lists the current items.
type ItemSource interface {
	Items() []inventory.Item
}

// Handler exposes the summary and chat endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	items    ItemSource
	validate *validator.Validate
}

// NewHandler constructs the assistant handler.
func NewHandler(logger *slog.Logger, service *Service, items ItemSource) *Handler {
	return &Handler{logger: logger, service: service, items: items, validate: validator.New()}
}

// MountRoutes registers assistant routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/assistant/summary", h.summary)
	r.Post("/assistant/chat", h.chat)
}

type chatRequest struct {
	Query string `json:"query" validate:"required,max=2000"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	reply, err := h.service.Summarize(r.Context(), h.items.Items())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, reply)
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, map[string]string{"query": err.Error()})
		return
	}
	reply, err := h.service.Answer(r.Context(), req.Query, h.items.Items())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, reply)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if !errors.Is(err, ErrBusy) {
		h.logger.Error("assistant request failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
