package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/genypos/api/internal/auth"
	"github.com/genypos/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// StaffStore defines the database methods needed by staff handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type StaffStore interface {
	ListStaff(ctx context.Context) ([]database.Staff, error)
	GetStaff(ctx context.Context, id uuid.UUID) (database.Staff, error)
	CreateStaff(ctx context.Context, arg database.CreateStaffParams) (database.Staff, error)
	UpdateStaff(ctx context.Context, arg database.UpdateStaffParams) (database.Staff, error)
	UpdateStaffPassword(ctx context.Context, arg database.UpdateStaffPasswordParams) (database.Staff, error)
	DeleteStaff(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// StaffHandler handles staff account management.
type StaffHandler struct {
	store StaffStore
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(store StaffStore) *StaffHandler {
	return &StaffHandler{store: store}
}

// RegisterRoutes registers staff endpoints.
// Expected to be mounted at /staff
func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createStaffRequest struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=captain delivery"`
	Phone    string `json:"phone"`
}

// updateStaffRequest leaves the password unchanged when it is empty.
type updateStaffRequest struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"omitempty,min=6"`
	Role     string `json:"role" validate:"required,oneof=captain delivery"`
	Phone    string `json:"phone"`
}

type staffResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

func toStaffResponse(s database.Staff) staffResponse {
	return staffResponse{
		ID:        s.ID,
		Name:      s.Name,
		Username:  s.Username,
		Role:      s.Role,
		Phone:     s.Phone,
		CreatedAt: s.CreatedAt,
	}
}

// --- Handlers ---

// List returns every staff account. Password hashes are never returned.
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	staff, err := h.store.ListStaff(r.Context())
	if err != nil {
		writeInternal(w, "list staff", err)
		return
	}

	resp := make([]staffResponse, len(staff))
	for i, s := range staff {
		resp[i] = toStaffResponse(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *StaffHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid staff ID")
		return
	}

	staff, err := h.store.GetStaff(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "staff not found")
			return
		}
		writeInternal(w, "get staff", err)
		return
	}

	writeJSON(w, http.StatusOK, toStaffResponse(staff))
}

// Create adds a captain or delivery account with a bcrypt-hashed password.
func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createStaffRequest
	if !decodeBody(w, r, &req) {
		return
	}

	hash, err := auth.HashSecret(req.Password)
	if err != nil {
		writeInternal(w, "hash password", err)
		return
	}

	staff, err := h.store.CreateStaff(r.Context(), database.CreateStaffParams{
		Name:         strings.TrimSpace(req.Name),
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
		Role:         req.Role,
		Phone:        strings.TrimSpace(req.Phone),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "username already taken")
			return
		}
		writeInternal(w, "create staff", err)
		return
	}

	writeJSON(w, http.StatusCreated, toStaffResponse(staff))
}

func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid staff ID")
		return
	}

	var req updateStaffRequest
	if !decodeBody(w, r, &req) {
		return
	}

	staff, err := h.store.UpdateStaff(r.Context(), database.UpdateStaffParams{
		ID:       id,
		Name:     strings.TrimSpace(req.Name),
		Username: strings.TrimSpace(req.Username),
		Role:     req.Role,
		Phone:    strings.TrimSpace(req.Phone),
	})
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			writeError(w, http.StatusNotFound, "staff not found")
		case isUniqueViolation(err):
			writeError(w, http.StatusConflict, "username already taken")
		default:
			writeInternal(w, "update staff", err)
		}
		return
	}

	if req.Password != "" {
		hash, err := auth.HashSecret(req.Password)
		if err != nil {
			writeInternal(w, "hash password", err)
			return
		}
		if staff, err = h.store.UpdateStaffPassword(r.Context(), database.UpdateStaffPasswordParams{
			ID:           id,
			PasswordHash: hash,
		}); err != nil {
			writeInternal(w, "update staff password", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, toStaffResponse(staff))
}

// Delete removes a staff account. Orders and activity keep their history
// with the staff reference cleared.
func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid staff ID")
		return
	}

	if _, err := h.store.DeleteStaff(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "staff not found")
			return
		}
		writeInternal(w, "delete staff", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
