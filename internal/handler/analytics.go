package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/genypos/api/internal/analytics"
	"github.com/genypos/api/internal/database"
	"github.com/genypos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// AnalyticsStore defines the database methods needed by the dashboard.
// Satisfied by *database.Queries; narrow interface for testability.
type AnalyticsStore interface {
	ListOrdersSince(ctx context.Context, since time.Time) ([]database.Order, error)
	ListOrderItemsByOrders(ctx context.Context, orderIDs []uuid.UUID) ([]database.OrderItem, error)
	ListAppSettings(ctx context.Context) ([]database.AppSetting, error)
}

// AnalyticsHandler serves the MG / admin dashboard.
type AnalyticsHandler struct {
	store AnalyticsStore
	loc   *time.Location
	now   func() time.Time
}

// NewAnalyticsHandler creates a new AnalyticsHandler. Buckets and day
// boundaries are computed in loc.
func NewAnalyticsHandler(store AnalyticsStore, loc *time.Location) *AnalyticsHandler {
	return &AnalyticsHandler{store: store, loc: loc, now: time.Now}
}

// RegisterRoutes registers dashboard endpoints.
// Expected to be mounted at /analytics
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Dashboard)
}

// Dashboard handles GET /analytics/dashboard?window=today|7d|30d.
// Orders are fetched once for the widest configured window.
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	window, err := analytics.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "window must be today, 7d or 30d")
		return
	}

	stored, err := h.store.ListAppSettings(r.Context())
	if err != nil {
		writeInternal(w, "list settings", err)
		return
	}
	values := make(map[string]string, len(stored))
	for _, s := range stored {
		values[s.Key] = s.Value
	}
	settings := analytics.SettingsFrom(values)

	now := h.now()
	orders, err := h.store.ListOrdersSince(r.Context(), settings.Earliest(window, now, h.loc))
	if err != nil {
		writeInternal(w, "list orders", err)
		return
	}

	var items []database.OrderItem
	if len(orders) > 0 {
		ids := make([]uuid.UUID, len(orders))
		for i, o := range orders {
			ids[i] = o.ID
		}
		items, err = h.store.ListOrderItemsByOrders(r.Context(), ids)
		if err != nil {
			writeInternal(w, "list order items", err)
			return
		}
	}

	dash := analytics.Build(service.AnalyticsOrders(orders, items), window, settings, now, h.loc)
	writeJSON(w, http.StatusOK, dash)
}
