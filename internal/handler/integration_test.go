//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/genypos/api/internal/auth"
	"github.com/genypos/api/internal/config"
	"github.com/genypos/api/internal/database"
	"github.com/genypos/api/internal/enum"
	"github.com/genypos/api/internal/router"
	"github.com/genypos/api/internal/ws"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

// TestIntegrationFlow runs a storefront order from menu to kitchen to
// tracking against a real PostgreSQL database.
func TestIntegrationFlow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	runMigrations(t, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	cfg := &config.Config{
		Port:        "8081",
		DatabaseURL: connStr,
		JWTSecret:   "integration-test-secret",
		Timezone:    "Asia/Kolkata",
	}
	log := zaptest.NewLogger(t)
	queries := database.New(pool)
	hub := ws.NewHub(log)
	go hub.Run(ctx) //nolint:errcheck

	r := router.New(cfg, queries, pool, hub, hub, log)
	server := httptest.NewServer(r)
	defer server.Close()

	// --- 1. Bootstrap console passphrases and a captain ---
	seedPassphrase(t, ctx, queries, enum.SettingAdminPassphrase, "admin-secret")
	seedPassphrase(t, ctx, queries, enum.SettingKitchenPassphrase, "kitchen-secret")
	seedCaptain(t, ctx, queries, "captain1", "captain-secret")

	// --- 2. Sign in ---
	adminToken := consoleLogin(t, server, enum.RoleAdmin, "admin-secret")
	kitchenToken := consoleLogin(t, server, enum.RoleKitchen, "kitchen-secret")
	captainToken := staffLogin(t, server, "captain1", "captain-secret")

	// --- 3. Admin builds the menu ---
	httpJSON(t, server, http.MethodPost, "/admin/categories", map[string]any{"name": "Pizza"}, adminToken, http.StatusCreated)
	item := httpJSON(t, server, http.MethodPost, "/admin/menu/items", map[string]any{
		"name":       "Margherita",
		"category":   "Pizza",
		"base_price": "300",
		"variants": []map[string]any{
			{"name": "Large", "price": "450"},
		},
	}, adminToken, http.StatusCreated)
	itemID := item["id"].(string)
	variants := item["variants"].([]any)
	variantID := variants[0].(map[string]any)["id"].(string)

	// --- 4. Customer checks out a counter order ---
	order := httpJSON(t, server, http.MethodPost, "/orders", map[string]any{
		"customer_name":  "Asha",
		"customer_phone": "9876543210",
		"order_type":     enum.OrderTypeCounter,
		"items": []map[string]any{
			{"menu_item_id": itemID, "quantity": 2},
			{"menu_item_id": itemID, "variant_id": variantID, "quantity": 1},
		},
	}, "", http.StatusCreated)
	orderID := order["id"].(string)

	// 2 x 300 + 1 x 450
	if got := order["total_amount"].(string); got != "1050.00" {
		t.Fatalf("total_amount: got %s, want 1050.00", got)
	}
	if got := order["status"].(string); got != enum.OrderStatusPending {
		t.Fatalf("status: got %s, want %s", got, enum.OrderStatusPending)
	}

	// --- 5. Kitchen prepares every item ---
	for _, it := range order["items"].([]any) {
		lineID := it.(map[string]any)["id"].(string)
		httpJSON(t, server, http.MethodPatch,
			fmt.Sprintf("/orders/%s/items/%s", orderID, lineID),
			map[string]any{"prepared": true}, kitchenToken, http.StatusOK)
	}

	got := httpJSON(t, server, http.MethodGet, "/orders/"+orderID, nil, kitchenToken, http.StatusOK)
	if got["status"].(string) != enum.OrderStatusPreparing {
		t.Fatalf("status after prep: got %v, want %s", got["status"], enum.OrderStatusPreparing)
	}
	if got["ready"] != true {
		t.Fatalf("ready after prep: got %v, want true", got["ready"])
	}

	// --- 6. Captain serves and settles the bill ---
	httpJSON(t, server, http.MethodPatch, "/orders/"+orderID+"/status",
		map[string]any{"status": enum.OrderStatusServed}, captainToken, http.StatusOK)
	done := httpJSON(t, server, http.MethodPatch, "/orders/"+orderID+"/status",
		map[string]any{"status": enum.OrderStatusPaymentCompleted}, captainToken, http.StatusOK)
	if done["completed_at"] == nil {
		t.Fatal("completed_at: got nil, want timestamp")
	}

	// Terminal orders are frozen.
	httpJSON(t, server, http.MethodPatch, "/orders/"+orderID+"/status",
		map[string]any{"status": enum.OrderStatusPreparing}, captainToken, http.StatusConflict)

	// --- 7. Customer tracks the order ---
	track := httpJSON(t, server, http.MethodGet, "/track/"+orderID, nil, "", http.StatusOK)
	if track["status"].(string) != enum.OrderStatusPaymentCompleted {
		t.Fatalf("track status: got %v", track["status"])
	}
	if _, leaked := track["customer_phone"]; leaked {
		t.Fatal("track response exposes customer_phone")
	}
}

// --- Setup helpers ---

func setupPostgresContainer(t *testing.T, ctx context.Context) (testcontainers.Container, string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("genypos_test"),
		tcpostgres.WithUsername("genypos"),
		tcpostgres.WithPassword("genypos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}

	return pgContainer, connStr, cleanup
}

func runMigrations(t *testing.T, connStr string) {
	t.Helper()

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("open db for migrations: %v", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		t.Fatalf("create migrate driver: %v", err)
	}

	// go test runs in the package directory.
	m, err := migrate.NewWithDatabaseInstance("file://../../migrations", "postgres", driver)
	if err != nil {
		t.Fatalf("create migrate instance: %v", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("run migrations: %v", err)
	}
}

func seedPassphrase(t *testing.T, ctx context.Context, q *database.Queries, key, passphrase string) {
	t.Helper()
	hash, err := auth.HashSecret(passphrase)
	if err != nil {
		t.Fatalf("hash passphrase: %v", err)
	}
	if _, err := q.SetAppSetting(ctx, database.SetAppSettingParams{Key: key, Value: hash}); err != nil {
		t.Fatalf("set %s: %v", key, err)
	}
}

func seedCaptain(t *testing.T, ctx context.Context, q *database.Queries, username, password string) uuid.UUID {
	t.Helper()
	hash, err := auth.HashSecret(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	staff, err := q.CreateStaff(ctx, database.CreateStaffParams{
		Name:         "Test Captain",
		Username:     username,
		PasswordHash: hash,
		Role:         enum.RoleCaptain,
	})
	if err != nil {
		t.Fatalf("create captain: %v", err)
	}
	return staff.ID
}

// --- API call helpers ---

func consoleLogin(t *testing.T, server *httptest.Server, role, passphrase string) string {
	t.Helper()
	resp := httpJSON(t, server, http.MethodPost, "/auth/console",
		map[string]any{"role": role, "passphrase": passphrase}, "", http.StatusOK)
	return tokenFrom(t, resp)
}

func staffLogin(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()
	resp := httpJSON(t, server, http.MethodPost, "/auth/login",
		map[string]any{"username": username, "password": password}, "", http.StatusOK)
	return tokenFrom(t, resp)
}

func tokenFrom(t *testing.T, resp map[string]any) string {
	t.Helper()
	token, ok := resp["access_token"].(string)
	if !ok || token == "" {
		t.Fatalf("login failed: no access_token in response: %+v", resp)
	}
	return token
}

// --- HTTP helpers ---

func httpJSON(t *testing.T, server *httptest.Server, method, path string, body map[string]any, token string, wantStatus int) map[string]any {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var result map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: status %d, want %d, body: %v", method, path, resp.StatusCode, wantStatus, result)
	}
	return result
}
