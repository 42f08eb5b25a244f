package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/genypos/api/internal/auth"
	"github.com/genypos/api/internal/database"
	"github.com/genypos/api/internal/enum"
	"github.com/genypos/api/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

type mockSettingsStore struct {
	values map[string]string
}

func newMockSettingsStore() *mockSettingsStore {
	return &mockSettingsStore{values: make(map[string]string)}
}

func (m *mockSettingsStore) GetAppSetting(_ context.Context, key string) (database.AppSetting, error) {
	v, ok := m.values[key]
	if !ok {
		return database.AppSetting{}, pgx.ErrNoRows
	}
	return database.AppSetting{Key: key, Value: v, UpdatedAt: time.Now()}, nil
}

func (m *mockSettingsStore) ListAppSettings(_ context.Context) ([]database.AppSetting, error) {
	var result []database.AppSetting
	for k, v := range m.values {
		result = append(result, database.AppSetting{Key: k, Value: v, UpdatedAt: time.Now()})
	}
	return result, nil
}

func (m *mockSettingsStore) SetAppSetting(_ context.Context, arg database.SetAppSettingParams) (database.AppSetting, error) {
	m.values[arg.Key] = arg.Value
	return database.AppSetting{Key: arg.Key, Value: arg.Value, UpdatedAt: time.Now()}, nil
}

func setupSettingsRouter(store *mockSettingsStore) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/settings", handler.NewSettingsHandler(store).RegisterRoutes)
	return r
}

func TestSettingsSet_PassphraseIsHashed(t *testing.T) {
	store := newMockSettingsStore()
	router := setupSettingsRouter(store)

	rr := doRequest(t, router, "PUT", "/settings/"+enum.SettingKitchenPassphrase, map[string]string{"value": "hot-oven"})
	expectStatus(t, rr, http.StatusOK)

	stored := store.values[enum.SettingKitchenPassphrase]
	if stored == "hot-oven" {
		t.Fatal("passphrase stored in plain text")
	}
	if err := auth.CheckSecret(stored, "hot-oven"); err != nil {
		t.Errorf("stored hash does not match: %v", err)
	}

	resp := decodeObject(t, rr)
	if _, ok := resp["value"]; ok {
		t.Error("passphrase hash must not be returned")
	}
	if resp["is_set"] != true {
		t.Error("is_set should be true")
	}
}

func TestSettingsSet_ShortPassphrase(t *testing.T) {
	router := setupSettingsRouter(newMockSettingsStore())

	rr := doRequest(t, router, "PUT", "/settings/"+enum.SettingMGPassphrase, map[string]string{"value": "abc"})
	expectStatus(t, rr, http.StatusBadRequest)
}

func TestSettingsSet_AnalyticsDays(t *testing.T) {
	store := newMockSettingsStore()
	router := setupSettingsRouter(store)

	rr := doRequest(t, router, "PUT", "/settings/"+enum.SettingTopItemsDays, map[string]string{"value": " 14 "})
	expectStatus(t, rr, http.StatusOK)
	if store.values[enum.SettingTopItemsDays] != "14" {
		t.Errorf("stored: got %q, want 14", store.values[enum.SettingTopItemsDays])
	}

	for _, bad := range []string{"0", "-3", "two weeks"} {
		rr := doRequest(t, router, "PUT", "/settings/"+enum.SettingKitchenDays, map[string]string{"value": bad})
		expectStatus(t, rr, http.StatusBadRequest)
	}
}

func TestSettingsListAndGet(t *testing.T) {
	store := newMockSettingsStore()
	store.values[enum.SettingAdminPassphrase] = "$2a$10$hash"
	store.values[enum.SettingLoyalDays] = "60"
	router := setupSettingsRouter(store)

	rr := doRequest(t, router, "GET", "/settings", nil)
	expectStatus(t, rr, http.StatusOK)
	for _, s := range decodeList(t, rr) {
		if s["key"] == enum.SettingAdminPassphrase && s["value"] != nil {
			t.Error("passphrase hash listed")
		}
		if s["key"] == enum.SettingLoyalDays && s["value"] != "60" {
			t.Errorf("loyal days: got %v", s["value"])
		}
	}

	rr = doRequest(t, router, "GET", "/settings/"+enum.SettingLoyalDays, nil)
	expectStatus(t, rr, http.StatusOK)
	expectStatus(t, doRequest(t, router, "GET", "/settings/unknown", nil), http.StatusNotFound)
}
