package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/genypos/api/internal/auth"
	"github.com/genypos/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AuthStore defines the database methods needed by auth handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type AuthStore interface {
	GetStaffByUsername(ctx context.Context, username string) (database.Staff, error)
	GetAppSetting(ctx context.Context, key string) (database.AppSetting, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	store     AuthStore
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store AuthStore, jwtSecret string) *AuthHandler {
	return &AuthHandler{store: store, jwtSecret: jwtSecret}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
	r.Post("/auth/console", h.Console)
}

// --- Request / Response types ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type consoleLoginRequest struct {
	Role       string `json:"role" validate:"required,oneof=admin kitchen mg"`
	Passphrase string `json:"passphrase" validate:"required"`
}

type tokenResponse struct {
	AccessToken string         `json:"access_token"`
	Role        string         `json:"role"`
	Staff       *staffResponse `json:"staff,omitempty"`
}

// --- Handlers ---

// Login authenticates captains and delivery staff by username + password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	staff, err := h.store.GetStaffByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeInternal(w, "get staff by username", err)
		return
	}

	if err := auth.CheckSecret(staff.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, staff.ID, staff.Role)
	if err != nil {
		writeInternal(w, "generate token", err)
		return
	}

	resp := toStaffResponse(staff)
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, Role: staff.Role, Staff: &resp})
}

// Console authenticates the admin, kitchen and mg consoles by the shared
// passphrase stored (hashed) in app settings.
func (h *AuthHandler) Console(w http.ResponseWriter, r *http.Request) {
	var req consoleLoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	setting, err := h.store.GetAppSetting(r.Context(), auth.PassphraseSetting(req.Role))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No passphrase configured: the console stays locked.
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeInternal(w, "get passphrase setting", err)
		return
	}

	if err := auth.CheckSecret(setting.Value, req.Passphrase); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, uuid.Nil, req.Role)
	if err != nil {
		writeInternal(w, "generate token", err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, Role: req.Role})
}
