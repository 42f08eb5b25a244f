package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/genypos/api/internal/database"
	"github.com/genypos/api/internal/enum"
	"github.com/genypos/api/internal/handler"
	"github.com/genypos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// --- Mock store ---

// mockMenuStore serves both MenuStore and MenuWriteStore. Writes made
// through a transaction land in the same maps.
type mockMenuStore struct {
	items     map[uuid.UUID]database.MenuItem
	variants  map[uuid.UUID][]database.MenuVariant
	campaigns []database.Campaign
	failOn    string
}

func newMockMenuStore() *mockMenuStore {
	return &mockMenuStore{
		items:    make(map[uuid.UUID]database.MenuItem),
		variants: make(map[uuid.UUID][]database.MenuVariant),
	}
}

func (m *mockMenuStore) add(name, category, price string) database.MenuItem {
	item := database.MenuItem{
		ID: uuid.New(), Name: name, Category: category, BasePrice: price,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	m.items[item.ID] = item
	return item
}

func (m *mockMenuStore) ListMenuItems(_ context.Context, arg database.ListMenuItemsParams) ([]database.MenuItem, error) {
	var result []database.MenuItem
	for _, it := range m.items {
		if arg.Category.Valid && it.Category != arg.Category.String {
			continue
		}
		result = append(result, it)
	}
	return result, nil
}

func (m *mockMenuStore) GetMenuItem(_ context.Context, id uuid.UUID) (database.MenuItem, error) {
	it, ok := m.items[id]
	if !ok {
		return database.MenuItem{}, pgx.ErrNoRows
	}
	return it, nil
}

func (m *mockMenuStore) ListVariantsByMenuItem(_ context.Context, menuItemID uuid.UUID) ([]database.MenuVariant, error) {
	return m.variants[menuItemID], nil
}

func (m *mockMenuStore) ListActiveCampaigns(_ context.Context, _ time.Time) ([]database.Campaign, error) {
	return m.campaigns, nil
}

func (m *mockMenuStore) DeleteMenuItem(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	if _, ok := m.items[id]; !ok {
		return uuid.Nil, pgx.ErrNoRows
	}
	delete(m.items, id)
	delete(m.variants, id)
	return id, nil
}

func (m *mockMenuStore) CreateMenuItem(_ context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error) {
	item := database.MenuItem{
		ID: uuid.New(), Name: arg.Name, Description: arg.Description, Category: arg.Category,
		BasePrice: arg.BasePrice, Tag: arg.Tag, ImageUrl: arg.ImageUrl,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	m.items[item.ID] = item
	return item, nil
}

func (m *mockMenuStore) UpdateMenuItem(_ context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error) {
	item, ok := m.items[arg.ID]
	if !ok {
		return database.MenuItem{}, pgx.ErrNoRows
	}
	item.Name, item.Description, item.Category = arg.Name, arg.Description, arg.Category
	item.BasePrice, item.Tag, item.ImageUrl = arg.BasePrice, arg.Tag, arg.ImageUrl
	item.UpdatedAt = time.Now()
	m.items[item.ID] = item
	return item, nil
}

func (m *mockMenuStore) DeleteVariantsByMenuItem(_ context.Context, menuItemID uuid.UUID) error {
	delete(m.variants, menuItemID)
	return nil
}

func (m *mockMenuStore) CreateVariant(_ context.Context, arg database.CreateVariantParams) (database.MenuVariant, error) {
	if m.failOn == "variant" {
		return database.MenuVariant{}, context.DeadlineExceeded
	}
	v := database.MenuVariant{ID: uuid.New(), MenuItemID: arg.MenuItemID, Name: arg.Name, Price: arg.Price}
	m.variants[arg.MenuItemID] = append(m.variants[arg.MenuItemID], v)
	return v, nil
}

// --- Helpers ---

func setupMenuRouter(store *mockMenuStore, pool *mockTxBeginner) *chi.Mux {
	h := handler.NewMenuHandler(store, pool, func(database.DBTX) handler.MenuWriteStore { return store })
	r := chi.NewRouter()
	r.Route("/menu/items", h.RegisterRoutes)
	r.Route("/admin/menu/items", h.RegisterAdminRoutes)
	return r
}

func percentCampaign(target string, pct int64) database.Campaign {
	return database.Campaign{
		ID:            uuid.New(),
		Name:          "Flat offer",
		Type:          enum.CampaignTypePercentage,
		DiscountValue: service.DecimalToNumeric(decimal.NewFromInt(pct)),
		TargetType:    enum.TargetCategory,
		TargetID:      pgtype.Text{String: target, Valid: true},
		IsActive:      true,
		CreatedAt:     time.Now(),
	}
}

// --- Read tests ---

func TestMenuList_AppliesAutoCampaign(t *testing.T) {
	store := newMockMenuStore()
	pizza := store.add("Margherita", "Pizzas", "400")
	store.variants[pizza.ID] = []database.MenuVariant{
		{ID: uuid.New(), MenuItemID: pizza.ID, Name: "Large", Price: "600"},
	}
	store.add("Garlic Bread", "Sides", "150")
	store.campaigns = []database.Campaign{percentCampaign("Pizzas", 25)}
	router := setupMenuRouter(store, &mockTxBeginner{})

	rr := doRequest(t, router, "GET", "/menu/items?category=Pizzas", nil)
	expectStatus(t, rr, http.StatusOK)

	list := decodeList(t, rr)
	if len(list) != 1 {
		t.Fatalf("items: got %d, want 1", len(list))
	}
	pricing := list[0]["pricing"].(map[string]interface{})
	if pricing["original"] != "400.00" || pricing["discounted"] != "300.00" {
		t.Errorf("pricing: got %v", pricing)
	}
	if pricing["campaign"] != "Flat offer" {
		t.Errorf("campaign: got %v", pricing["campaign"])
	}

	variants := list[0]["variants"].([]interface{})
	vp := variants[0].(map[string]interface{})["pricing"].(map[string]interface{})
	if vp["discounted"] != "450.00" {
		t.Errorf("variant discounted: got %v, want 450.00", vp["discounted"])
	}
}

func TestMenuList_CodedCampaignNotAutoApplied(t *testing.T) {
	store := newMockMenuStore()
	store.add("Margherita", "Pizzas", "400")
	c := percentCampaign("Pizzas", 25)
	c.Code = pgtype.Text{String: "PIZZA25", Valid: true}
	store.campaigns = []database.Campaign{c}
	router := setupMenuRouter(store, &mockTxBeginner{})

	rr := doRequest(t, router, "GET", "/menu/items", nil)
	expectStatus(t, rr, http.StatusOK)

	pricing := decodeList(t, rr)[0]["pricing"].(map[string]interface{})
	if pricing["discounted"] != "400.00" {
		t.Errorf("discounted: got %v, want 400.00", pricing["discounted"])
	}
}

func TestMenuGet_NotFound(t *testing.T) {
	router := setupMenuRouter(newMockMenuStore(), &mockTxBeginner{})
	expectStatus(t, doRequest(t, router, "GET", "/menu/items/"+uuid.New().String(), nil), http.StatusNotFound)
}

// --- Write tests ---

func TestMenuCreate_WithVariants(t *testing.T) {
	store := newMockMenuStore()
	pool := &mockTxBeginner{}
	router := setupMenuRouter(store, pool)

	rr := doRequest(t, router, "POST", "/admin/menu/items", map[string]interface{}{
		"name":       "Farmhouse",
		"category":   "Pizzas",
		"base_price": "₹450",
		"tag":        "Veg",
		"variants": []map[string]string{
			{"name": "Medium", "price": "550"},
			{"name": "Large", "price": "700"},
		},
	})
	expectStatus(t, rr, http.StatusCreated)

	resp := decodeObject(t, rr)
	id := uuid.MustParse(resp["id"].(string))
	if len(store.variants[id]) != 2 {
		t.Errorf("variants: got %d, want 2", len(store.variants[id]))
	}
	if len(pool.txs) != 1 || !pool.txs[0].committed {
		t.Error("expected one committed transaction")
	}
	if resp["tag"] != "Veg" {
		t.Errorf("tag: got %v, want Veg", resp["tag"])
	}
}

func TestMenuCreate_InvalidPrice(t *testing.T) {
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"zero base price", map[string]interface{}{"name": "X", "category": "Pizzas", "base_price": "0"}},
		{"garbage base price", map[string]interface{}{"name": "X", "category": "Pizzas", "base_price": "free"}},
		{"bad variant price", map[string]interface{}{
			"name": "X", "category": "Pizzas", "base_price": "100",
			"variants": []map[string]string{{"name": "L", "price": "-"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := &mockTxBeginner{}
			router := setupMenuRouter(newMockMenuStore(), pool)

			expectStatus(t, doRequest(t, router, "POST", "/admin/menu/items", tt.body), http.StatusBadRequest)
			if len(pool.txs) != 0 {
				t.Error("no transaction should be opened for invalid input")
			}
		})
	}
}

func TestMenuCreate_VariantFailureRollsBack(t *testing.T) {
	store := newMockMenuStore()
	store.failOn = "variant"
	pool := &mockTxBeginner{}
	router := setupMenuRouter(store, pool)

	rr := doRequest(t, router, "POST", "/admin/menu/items", map[string]interface{}{
		"name": "Farmhouse", "category": "Pizzas", "base_price": "450",
		"variants": []map[string]string{{"name": "Large", "price": "700"}},
	})
	expectStatus(t, rr, http.StatusInternalServerError)

	if pool.txs[0].committed || !pool.txs[0].rolledBack {
		t.Error("transaction should be rolled back")
	}
}

func TestMenuUpdate_ReplacesVariants(t *testing.T) {
	store := newMockMenuStore()
	item := store.add("Margherita", "Pizzas", "400")
	store.variants[item.ID] = []database.MenuVariant{
		{ID: uuid.New(), MenuItemID: item.ID, Name: "Small", Price: "300"},
		{ID: uuid.New(), MenuItemID: item.ID, Name: "Large", Price: "600"},
	}
	router := setupMenuRouter(store, &mockTxBeginner{})

	rr := doRequest(t, router, "PUT", "/admin/menu/items/"+item.ID.String(), map[string]interface{}{
		"name": "Margherita", "category": "Pizzas", "base_price": "420",
		"variants": []map[string]string{{"name": "Regular", "price": "420"}},
	})
	expectStatus(t, rr, http.StatusOK)

	got := store.variants[item.ID]
	if len(got) != 1 || got[0].Name != "Regular" {
		t.Errorf("variants: got %+v", got)
	}
	if store.items[item.ID].BasePrice != "420" {
		t.Errorf("base price: got %s", store.items[item.ID].BasePrice)
	}
}

func TestMenuUpdate_NotFound(t *testing.T) {
	router := setupMenuRouter(newMockMenuStore(), &mockTxBeginner{})

	rr := doRequest(t, router, "PUT", "/admin/menu/items/"+uuid.New().String(), map[string]interface{}{
		"name": "X", "category": "Pizzas", "base_price": "100",
	})
	expectStatus(t, rr, http.StatusNotFound)
}

func TestMenuDelete(t *testing.T) {
	store := newMockMenuStore()
	item := store.add("Margherita", "Pizzas", "400")
	router := setupMenuRouter(store, &mockTxBeginner{})

	expectStatus(t, doRequest(t, router, "DELETE", "/admin/menu/items/"+item.ID.String(), nil), http.StatusNoContent)
	expectStatus(t, doRequest(t, router, "DELETE", "/admin/menu/items/"+item.ID.String(), nil), http.StatusNotFound)
}
