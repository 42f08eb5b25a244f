package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/genypos/api/internal/auth"
	"github.com/genypos/api/internal/database"
	"github.com/genypos/api/internal/enum"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// SettingsStore defines the database methods needed by settings handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type SettingsStore interface {
	GetAppSetting(ctx context.Context, key string) (database.AppSetting, error)
	ListAppSettings(ctx context.Context) ([]database.AppSetting, error)
	SetAppSetting(ctx context.Context, arg database.SetAppSettingParams) (database.AppSetting, error)
}

// SettingsHandler exposes the app settings key-value store to MG.
type SettingsHandler struct {
	store SettingsStore
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(store SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// RegisterRoutes registers settings endpoints.
// Expected to be mounted at /settings
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{key}", h.Get)
	r.Put("/{key}", h.Set)
}

type setSettingRequest struct {
	Value string `json:"value" validate:"required"`
}

// settingResponse omits passphrase hashes. IsSet tells whether one is
// configured.
type settingResponse struct {
	Key       string    `json:"key"`
	Value     string    `json:"value,omitempty"`
	IsSet     bool      `json:"is_set"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toSettingResponse(s database.AppSetting) settingResponse {
	resp := settingResponse{Key: s.Key, IsSet: s.Value != "", UpdatedAt: s.UpdatedAt}
	if !auth.IsPassphraseSetting(s.Key) {
		resp.Value = s.Value
	}
	return resp
}

func isDaysSetting(key string) bool {
	switch key {
	case enum.SettingTopItemsDays, enum.SettingHotZonesDays,
		enum.SettingLoyalDays, enum.SettingKitchenDays:
		return true
	}
	return false
}

func (h *SettingsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListAppSettings(r.Context())
	if err != nil {
		writeInternal(w, "list settings", err)
		return
	}

	resp := make([]settingResponse, len(list))
	for i, s := range list {
		resp[i] = toSettingResponse(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	setting, err := h.store.GetAppSetting(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "setting not found")
			return
		}
		writeInternal(w, "get setting", err)
		return
	}

	writeJSON(w, http.StatusOK, toSettingResponse(setting))
}

// Set upserts a setting. Passphrases are stored as bcrypt hashes and
// analytics windows must be a positive number of days.
func (h *SettingsHandler) Set(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(chi.URLParam(r, "key"))
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	var req setSettingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	value := req.Value
	switch {
	case auth.IsPassphraseSetting(key):
		if len(value) < 6 {
			writeError(w, http.StatusBadRequest, "passphrase must be at least 6 characters")
			return
		}
		hash, err := auth.HashSecret(value)
		if err != nil {
			writeInternal(w, "hash passphrase", err)
			return
		}
		value = hash
	case isDaysSetting(key):
		days, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || days <= 0 {
			writeError(w, http.StatusBadRequest, "value must be a positive number of days")
			return
		}
		value = strconv.Itoa(days)
	}

	setting, err := h.store.SetAppSetting(r.Context(), database.SetAppSettingParams{Key: key, Value: value})
	if err != nil {
		writeInternal(w, "set setting", err)
		return
	}

	zap.L().Info("setting updated", zap.String("key", key))
	writeJSON(w, http.StatusOK, toSettingResponse(setting))
}
