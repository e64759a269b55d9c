package analytichttp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/kord-engine/kord/internal/analytics"
	"github.com/kord-engine/kord/internal/analytics/export"
	"github.com/kord-engine/kord/internal/inventory"
	"github.com/kord-engine/kord/internal/platform/httpx"
)

const requestTimeout = 2 * time.Second

// AnalyticsService defines the view contract used by the handler.
type AnalyticsService interface {
	Dashboard(ctx context.Context) (analytics.Dashboard, error)
	CategoryReport(ctx context.Context) (analytics.Report, error)
	ActivityLog(ctx context.Context) ([]inventory.LogEntry, error)
}

// Handler serves dashboard and report endpoints.
type Handler struct {
	logger  *slog.Logger
	service AnalyticsService
	csvPool sync.Pool
	now     func() time.Time
}

// NewHandler constructs the analytics HTTP handler.
func NewHandler(logger *slog.Logger, service AnalyticsService) *Handler {
	h := &Handler{
		logger:  logger,
		service: service,
		now:     time.Now,
	}
	h.csvPool.New = func() any { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data, err := h.service.Dashboard(ctx)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

func (h *Handler) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.CategoryReport(ctx)
	if err != nil {
		h.handleServerError(w, "load category report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleCategoryCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.CategoryReport(ctx)
	if err != nil {
		h.handleServerError(w, "load category report", err)
		return
	}
	h.streamCSV(w, "kord-categories", func(buf *bytes.Buffer) error {
		return export.WriteCategoryCSV(buf, report)
	})
}

func (h *Handler) handleLogCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	logs, err := h.service.ActivityLog(ctx)
	if err != nil {
		h.handleServerError(w, "load activity log", err)
		return
	}
	h.streamCSV(w, "kord-activity", func(buf *bytes.Buffer) error {
		return export.WriteLogCSV(buf, logs)
	})
}

func (h *Handler) streamCSV(w http.ResponseWriter, prefix string, write func(*bytes.Buffer) error) {
	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := write(buf); err != nil {
		h.handleServerError(w, "write "+prefix+" csv", err)
		return
	}

	filename := fmt.Sprintf("%s-%s.csv", prefix, h.now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	httpx.RespondError(w, err)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}
