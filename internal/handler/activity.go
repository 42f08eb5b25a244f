package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/genypos/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ActivityStore defines the database methods needed by the activity feed.
// Satisfied by *database.Queries; narrow interface for testability.
type ActivityStore interface {
	ListStaffActivity(ctx context.Context, arg database.ListStaffActivityParams) ([]database.StaffActivity, error)
	ListStaff(ctx context.Context) ([]database.Staff, error)
}

// ActivityHandler serves the admin activity feed.
type ActivityHandler struct {
	store ActivityStore
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(store ActivityStore) *ActivityHandler {
	return &ActivityHandler{store: store}
}

// RegisterRoutes registers activity endpoints.
// Expected to be mounted at /activity
func (h *ActivityHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
}

type activityResponse struct {
	ID        uuid.UUID  `json:"id"`
	StaffID   *uuid.UUID `json:"staff_id"`
	StaffName string     `json:"staff_name"`
	ActorRole string     `json:"actor_role"`
	Action    string     `json:"action"`
	OrderID   *uuid.UUID `json:"order_id"`
	Details   string     `json:"details"`
	CreatedAt time.Time  `json:"created_at"`
}

// List returns the newest activity first, paginated by limit/offset.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, 50, 200)

	entries, err := h.store.ListStaffActivity(r.Context(), database.ListStaffActivityParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		writeInternal(w, "list staff activity", err)
		return
	}

	staff, err := h.store.ListStaff(r.Context())
	if err != nil {
		writeInternal(w, "list staff", err)
		return
	}
	names := make(map[uuid.UUID]string, len(staff))
	for _, s := range staff {
		names[s.ID] = s.Name
	}

	resp := make([]activityResponse, len(entries))
	for i, e := range entries {
		a := activityResponse{
			ID:        e.ID,
			ActorRole: e.ActorRole,
			Action:    e.Action,
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		}
		if e.StaffID.Valid {
			id := uuid.UUID(e.StaffID.Bytes)
			a.StaffID = &id
			a.StaffName = names[id]
		}
		if e.OrderID.Valid {
			id := uuid.UUID(e.OrderID.Bytes)
			a.OrderID = &id
		}
		resp[i] = a
	}

	writeJSON(w, http.StatusOK, resp)
}

// pagination reads limit/offset query params, clamping limit to max.
func pagination(r *http.Request, def, max int) (int, int) {
	limit := def
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > max {
		limit = max
	}

	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}
