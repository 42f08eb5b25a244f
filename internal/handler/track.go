package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/genypos/api/internal/database"
	"github.com/genypos/api/internal/orderstate"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// trackByPhoneLimit bounds the phone lookup to a customer's recent orders.
const trackByPhoneLimit = 10

// TrackStore defines the database methods needed by order tracking.
// Satisfied by *database.Queries; narrow interface for testability.
type TrackStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrdersByPhone(ctx context.Context, phone string, limit int32) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
}

// TrackHandler serves the public Track-Order page.
type TrackHandler struct {
	store TrackStore
}

// NewTrackHandler creates a new TrackHandler.
func NewTrackHandler(store TrackStore) *TrackHandler {
	return &TrackHandler{store: store}
}

// RegisterRoutes registers tracking endpoints.
// Expected to be mounted at /track
func (h *TrackHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ByPhone)
	r.Get("/{id}", h.Get)
}

// trackResponse is what a customer may see of an order. Staff assignments
// and the delivery address are left out.
type trackResponse struct {
	ID          uuid.UUID           `json:"id"`
	Status      string              `json:"status"`
	OrderType   string              `json:"order_type"`
	Steps       []string            `json:"steps"`
	TotalAmount string              `json:"total_amount"`
	TableNumber *int32              `json:"table_number"`
	CreatedAt   time.Time           `json:"created_at"`
	PreparingAt *time.Time          `json:"preparing_at"`
	ReadyAt     *time.Time          `json:"ready_at"`
	CompletedAt *time.Time          `json:"completed_at"`
	Items       []orderItemResponse `json:"items"`
}

func toTrackResponse(o database.Order, items []database.OrderItem) trackResponse {
	full := toOrderResponse(o, items)
	return trackResponse{
		ID:          full.ID,
		Status:      full.Status,
		OrderType:   full.OrderType,
		Steps:       orderstate.Statuses(o.OrderType),
		TotalAmount: full.TotalAmount,
		TableNumber: full.TableNumber,
		CreatedAt:   full.CreatedAt,
		PreparingAt: full.PreparingAt,
		ReadyAt:     full.ReadyAt,
		CompletedAt: full.CompletedAt,
		Items:       full.Items,
	}
}

// Get handles GET /track/{id}. A cancelled order is simply not found.
func (h *TrackHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeInternal(w, "get order", err)
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		writeInternal(w, "list order items", err)
		return
	}

	writeJSON(w, http.StatusOK, toTrackResponse(order, items))
}

// ByPhone handles GET /track?phone=, newest first.
func (h *TrackHandler) ByPhone(w http.ResponseWriter, r *http.Request) {
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if phone == "" {
		writeError(w, http.StatusBadRequest, "phone is required")
		return
	}

	orders, err := h.store.ListOrdersByPhone(r.Context(), phone, trackByPhoneLimit)
	if err != nil {
		writeInternal(w, "list orders by phone", err)
		return
	}

	resp := make([]trackResponse, len(orders))
	for i, o := range orders {
		items, err := h.store.ListOrderItemsByOrder(r.Context(), o.ID)
		if err != nil {
			writeInternal(w, "list order items", err)
			return
		}
		resp[i] = toTrackResponse(o, items)
	}

	writeJSON(w, http.StatusOK, resp)
}
