package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/kord-engine/kord/internal/platform/httpx"
)

// Handler wires JSON endpoints for the item registry and activity log.
type Handler struct {
	logger     *slog.Logger
	store      *Store
	categories []CategoryConfig
	validate   *validator.Validate
	now        func() time.Time
}

// NewHandler constructs the inventory handler.
func NewHandler(logger *slog.Logger, store *Store, categories []CategoryConfig) *Handler {
	if categories == nil {
		categories = DefaultCategories
	}
	return &Handler{
		logger:     logger,
		store:      store,
		categories: categories,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/items", h.listItems)
	r.Post("/items", h.createItem)
	r.Put("/items", h.replaceItems)
	r.Get("/items/{id}", h.getItem)
	r.Get("/items/{id}/logs", h.itemLogs)
	r.Post("/items/{id}/adjust", h.adjustItem)
	r.Post("/items/{id}/status", h.changeStatus)
	r.Post("/search", h.search)
	r.Get("/logs", h.listLogs)
	r.Get("/categories", h.listCategories)
}

type itemView struct {
	Item
	Critical bool `json:"critical"`
}

func viewOf(it Item) itemView {
	return itemView{Item: it, Critical: it.Critical()}
}

func viewsOf(items []Item) []itemView {
	out := make([]itemView, len(items))
	for i, it := range items {
		out[i] = viewOf(it)
	}
	return out
}

type createItemRequest struct {
	Name           string           `json:"name" validate:"max=200"`
	SKU            string           `json:"sku" validate:"max=64"`
	SerialNumber   string           `json:"serialNumber" validate:"max=128"`
	WarrantyExpiry string           `json:"warrantyExpiry" validate:"omitempty,datetime=2006-01-02"`
	Quantity       *int             `json:"quantity" validate:"omitempty,min=0"`
	MinThreshold   *int             `json:"minThreshold" validate:"omitempty,min=0"`
	Price          *decimal.Decimal `json:"price"`
	Category       string           `json:"category" validate:"max=100"`
	Manufacturer   string           `json:"manufacturer" validate:"max=200"`
	ProjectLink    string           `json:"projectLink" validate:"omitempty,url"`
	Tags           []string         `json:"tags" validate:"dive,max=50"`
	CustomFields   []CustomField    `json:"customFields"`
}

type adjustRequest struct {
	Mode   string `json:"mode" validate:"required,oneof=IN OUT"`
	Amount int    `json:"amount" validate:"required,gt=0"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type replaceRequest struct {
	Items []Item `json:"items"`
}

type searchRequest struct {
	Term       string           `json:"term" validate:"max=200"`
	Categories []string         `json:"categories" validate:"dive,max=100"`
	MaxPrice   *decimal.Decimal `json:"maxPrice"`
	Recency    string           `json:"recency" validate:"omitempty,oneof=any today week month"`
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items := h.store.Items()
	if term := r.URL.Query().Get("q"); term != "" {
		items = Search(items, term)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": viewsOf(items)})
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := h.check(req); len(fields) > 0 {
		httpx.ValidationProblem(w, fields)
		return
	}
	if req.Price != nil && req.Price.IsNegative() {
		httpx.ValidationProblem(w, map[string]string{"price": "price must be >= 0"})
		return
	}
	item, _ := h.store.CreateItem(r.Context(), Draft{
		Name:           req.Name,
		SKU:            req.SKU,
		SerialNumber:   req.SerialNumber,
		WarrantyExpiry: req.WarrantyExpiry,
		Quantity:       req.Quantity,
		MinThreshold:   req.MinThreshold,
		Price:          req.Price,
		Category:       req.Category,
		Manufacturer:   req.Manufacturer,
		ProjectLink:    req.ProjectLink,
		Tags:           req.Tags,
		CustomFields:   req.CustomFields,
	})
	h.logger.Info("item registered", slog.String("item_id", item.ID), slog.Int("quantity", item.Quantity))
	httpx.JSON(w, http.StatusCreated, viewOf(item))
}

func (h *Handler) replaceItems(w http.ResponseWriter, r *http.Request) {
	var req replaceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, err := h.store.BulkReplace(r.Context(), req.Items)
	if err != nil {
		h.respondMutationError(w, "bulk replace", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": viewsOf(items)})
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.Item(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(item))
}

func (h *Handler) itemLogs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.Item(id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"logs": ItemLogs(h.store.Logs(0), id)})
}

func (h *Handler) adjustItem(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := h.check(req); len(fields) > 0 {
		httpx.ValidationProblem(w, fields)
		return
	}
	item, entry, err := h.store.AdjustQuantity(r.Context(), chi.URLParam(r, "id"), AdjustMode(req.Mode), req.Amount)
	if err != nil {
		h.respondMutationError(w, "adjust quantity", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"item": viewOf(item), "log": entry})
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := h.check(req); len(fields) > 0 {
		httpx.ValidationProblem(w, fields)
		return
	}
	item, entry, err := h.store.ChangeStatus(r.Context(), chi.URLParam(r, "id"), Status(req.Status))
	if err != nil {
		h.respondMutationError(w, "change status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"item": viewOf(item), "log": entry})
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := h.check(req); len(fields) > 0 {
		httpx.ValidationProblem(w, fields)
		return
	}
	items := Filter(h.store.Items(), Criteria{
		Term:       req.Term,
		Categories: req.Categories,
		MaxPrice:   req.MaxPrice,
		Recency:    Recency(req.Recency),
	}, h.now())
	httpx.JSON(w, http.StatusOK, map[string]any{"items": viewsOf(items), "count": len(items)})
}

func (h *Handler) listLogs(w http.ResponseWriter, r *http.Request) {
	if page, perPage, ok, fields := httpx.PageParams(r); ok {
		if len(fields) > 0 {
			httpx.ValidationProblem(w, fields)
			return
		}
		logs := h.store.Logs(0)
		p := httpx.NewPagination(page, perPage, len(logs))
		start, end := p.Bounds()
		httpx.JSON(w, http.StatusOK, map[string]any{"logs": logs[start:end], "pagination": p})
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpx.ValidationProblem(w, map[string]string{"limit": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"logs": h.store.Logs(limit)})
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"categories": h.categories})
}

func (h *Handler) check(v any) map[string]string {
	fields := make(map[string]string)
	err := h.validate.Struct(v)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fieldErr := range verrs {
			fields[fieldErr.Field()] = fieldErr.Error()
		}
	} else if err != nil {
		fields["general"] = err.Error()
	}
	return fields
}

func (h *Handler) respondMutationError(w http.ResponseWriter, op string, err error) {
	if !IsRejection(err) {
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
