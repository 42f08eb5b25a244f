package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/genypos/api/internal/database"
	"github.com/genypos/api/internal/enum"
	"github.com/genypos/api/internal/middleware"
	"github.com/genypos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// TableStore defines the database methods needed by table handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type TableStore interface {
	ListTables(ctx context.Context) ([]database.RestaurantTable, error)
	CreateTable(ctx context.Context, arg database.CreateTableParams) (database.RestaurantTable, error)
}

// TableServicer releases tables. Satisfied by *service.OrderService.
type TableServicer interface {
	FreeTable(ctx context.Context, tableID uuid.UUID, actor service.Actor) (database.RestaurantTable, error)
	ResetAllTables(ctx context.Context, actor service.Actor) (int64, error)
}

// TableHandler handles dine-in table endpoints.
type TableHandler struct {
	store TableStore
	svc   TableServicer
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(store TableStore, svc TableServicer) *TableHandler {
	return &TableHandler{store: store, svc: svc}
}

// RegisterRoutes registers table endpoints behind authentication.
// Expected to be mounted at /tables
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.With(middleware.RequireRole(enum.RoleCaptain, enum.RoleAdmin, enum.RoleMG)).
		Post("/{id}/free", h.Free)
	r.With(middleware.RequireRole(enum.RoleAdmin, enum.RoleMG)).
		Post("/", h.Create)
	r.With(middleware.RequireRole(enum.RoleMG)).
		Post("/reset", h.ResetAll)
}

type createTableRequest struct {
	TableNumber int32 `json:"table_number" validate:"gt=0"`
	Capacity    int32 `json:"capacity" validate:"gt=0"`
}

type tableResponse struct {
	ID          uuid.UUID `json:"id"`
	TableNumber int32     `json:"table_number"`
	Capacity    int32     `json:"capacity"`
	Status      string    `json:"status"`
}

func toTableResponse(t database.RestaurantTable) tableResponse {
	return tableResponse{ID: t.ID, TableNumber: t.TableNumber, Capacity: t.Capacity, Status: t.Status}
}

func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.store.ListTables(r.Context())
	if err != nil {
		writeInternal(w, "list tables", err)
		return
	}

	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = toTableResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if !decodeBody(w, r, &req) {
		return
	}

	table, err := h.store.CreateTable(r.Context(), database.CreateTableParams{
		TableNumber: req.TableNumber,
		Capacity:    req.Capacity,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "table number already exists")
			return
		}
		writeInternal(w, "create table", err)
		return
	}

	writeJSON(w, http.StatusCreated, toTableResponse(table))
}

// Free marks one table Available.
func (h *TableHandler) Free(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	tableID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid table ID")
		return
	}

	table, err := h.svc.FreeTable(r.Context(), tableID, actorFrom(claims))
	if err != nil {
		if errors.Is(err, service.ErrTableNotFound) {
			writeError(w, http.StatusNotFound, "table not found")
			return
		}
		writeInternal(w, "free table", err)
		return
	}

	writeJSON(w, http.StatusOK, toTableResponse(table))
}

// ResetAll marks every table Available.
func (h *TableHandler) ResetAll(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	n, err := h.svc.ResetAllTables(r.Context(), actorFrom(claims))
	if err != nil {
		writeInternal(w, "reset tables", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"reset": n})
}
