package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/genypos/api/internal/database"
	"github.com/genypos/api/internal/pricing"
	"github.com/genypos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MenuStore defines the database methods needed by menu read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListMenuItems(ctx context.Context, arg database.ListMenuItemsParams) ([]database.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	ListVariantsByMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]database.MenuVariant, error)
	ListActiveCampaigns(ctx context.Context, now time.Time) ([]database.Campaign, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// MenuWriteStore is used inside a transaction to write an item together
// with its variants.
type MenuWriteStore interface {
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteVariantsByMenuItem(ctx context.Context, menuItemID uuid.UUID) error
	CreateVariant(ctx context.Context, arg database.CreateVariantParams) (database.MenuVariant, error)
}

// NewMenuWriteStore creates a MenuWriteStore from a DBTX (pool or tx).
type NewMenuWriteStore func(db database.DBTX) MenuWriteStore

// MenuHandler serves the priced menu and its management endpoints.
type MenuHandler struct {
	store    MenuStore
	pool     service.TxBeginner
	newStore NewMenuWriteStore
	now      func() time.Time
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore, pool service.TxBeginner, newStore NewMenuWriteStore) *MenuHandler {
	return &MenuHandler{store: store, pool: pool, newStore: newStore, now: time.Now}
}

// RegisterRoutes registers the public menu endpoints.
// Expected to be mounted at /menu/items
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// RegisterAdminRoutes registers menu management.
// Expected to be mounted at /admin/menu/items
func (h *MenuHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type variantRequest struct {
	Name  string `json:"name" validate:"required"`
	Price string `json:"price" validate:"required"`
}

type menuItemRequest struct {
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	Category    string           `json:"category" validate:"required"`
	BasePrice   string           `json:"base_price" validate:"required"`
	Tag         string           `json:"tag"`
	ImageURL    string           `json:"image_url"`
	Variants    []variantRequest `json:"variants" validate:"dive"`
}

type priceResponse struct {
	Original   string  `json:"original"`
	Discounted string  `json:"discounted"`
	CampaignID *string `json:"campaign_id"`
	Campaign   *string `json:"campaign"`
}

type variantResponse struct {
	ID    uuid.UUID     `json:"id"`
	Name  string        `json:"name"`
	Price string        `json:"price"`
	Quote priceResponse `json:"pricing"`
}

type menuItemResponse struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	BasePrice   string            `json:"base_price"`
	Tag         *string           `json:"tag"`
	ImageURL    string            `json:"image_url"`
	Pricing     priceResponse     `json:"pricing"`
	Variants    []variantResponse `json:"variants"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func toPriceResponse(res pricing.Result) priceResponse {
	p := priceResponse{
		Original:   res.Original.StringFixed(2),
		Discounted: res.Discounted.StringFixed(2),
	}
	if res.Applied != nil {
		id, name := res.Applied.ID, res.Applied.Name
		p.CampaignID = &id
		p.Campaign = &name
	}
	return p
}

func toMenuItemResponse(m database.MenuItem, variants []database.MenuVariant, campaigns []pricing.Campaign, now time.Time) menuItemResponse {
	item := service.PricingItem(m)
	resp := menuItemResponse{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Category:    m.Category,
		BasePrice:   m.BasePrice,
		Tag:         textPtr(m.Tag),
		ImageURL:    m.ImageUrl,
		Pricing:     toPriceResponse(pricing.Price(m.BasePrice, item, campaigns, now)),
		Variants:    make([]variantResponse, len(variants)),
		UpdatedAt:   m.UpdatedAt,
	}
	for i, v := range variants {
		resp.Variants[i] = variantResponse{
			ID:    v.ID,
			Name:  v.Name,
			Price: v.Price,
			Quote: toPriceResponse(pricing.Price(v.Price, item, campaigns, now)),
		}
	}
	return resp
}

// --- Handlers ---

// List returns menu items priced with the auto-apply campaigns live now.
// Optional filters: ?category= and ?search=.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListMenuItems(r.Context(), database.ListMenuItemsParams{
		Category: optionalText(r.URL.Query().Get("category")),
		Search:   optionalText(r.URL.Query().Get("search")),
	})
	if err != nil {
		writeInternal(w, "list menu items", err)
		return
	}

	now := h.now()
	campaigns, ok := h.liveCampaigns(w, r, now)
	if !ok {
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, m := range items {
		variants, err := h.store.ListVariantsByMenuItem(r.Context(), m.ID)
		if err != nil {
			writeInternal(w, "list variants", err)
			return
		}
		resp[i] = toMenuItemResponse(m, variants, campaigns, now)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid menu item ID")
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		writeInternal(w, "get menu item", err)
		return
	}

	variants, err := h.store.ListVariantsByMenuItem(r.Context(), id)
	if err != nil {
		writeInternal(w, "list variants", err)
		return
	}

	now := h.now()
	campaigns, ok := h.liveCampaigns(w, r, now)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item, variants, campaigns, now))
}

// Create adds a menu item and its variants in one transaction.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if !decodeBody(w, r, &req) || !validPrices(w, req) {
		return
	}

	h.write(w, r, http.StatusCreated, func(ctx context.Context, store MenuWriteStore) (database.MenuItem, error) {
		return store.CreateMenuItem(ctx, database.CreateMenuItemParams{
			Name:        strings.TrimSpace(req.Name),
			Description: req.Description,
			Category:    strings.TrimSpace(req.Category),
			BasePrice:   strings.TrimSpace(req.BasePrice),
			Tag:         optionalText(req.Tag),
			ImageUrl:    req.ImageURL,
		})
	}, req.Variants)
}

// Update replaces a menu item and its full variant list.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid menu item ID")
		return
	}

	var req menuItemRequest
	if !decodeBody(w, r, &req) || !validPrices(w, req) {
		return
	}

	h.write(w, r, http.StatusOK, func(ctx context.Context, store MenuWriteStore) (database.MenuItem, error) {
		item, err := store.UpdateMenuItem(ctx, database.UpdateMenuItemParams{
			ID:          id,
			Name:        strings.TrimSpace(req.Name),
			Description: req.Description,
			Category:    strings.TrimSpace(req.Category),
			BasePrice:   strings.TrimSpace(req.BasePrice),
			Tag:         optionalText(req.Tag),
			ImageUrl:    req.ImageURL,
		})
		if err != nil {
			return item, err
		}
		return item, store.DeleteVariantsByMenuItem(ctx, id)
	}, req.Variants)
}

func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid menu item ID")
		return
	}

	if _, err := h.store.DeleteMenuItem(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		writeInternal(w, "delete menu item", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// write runs upsert and inserts variants inside one transaction, then
// answers with the stored item.
func (h *MenuHandler) write(w http.ResponseWriter, r *http.Request, status int,
	upsert func(context.Context, MenuWriteStore) (database.MenuItem, error), variants []variantRequest) {
	ctx := r.Context()

	tx, err := h.pool.Begin(ctx)
	if err != nil {
		writeInternal(w, "begin tx for menu item", err)
		return
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := h.newStore(tx)

	item, err := upsert(ctx, store)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		writeInternal(w, "write menu item", err)
		return
	}

	created := make([]database.MenuVariant, 0, len(variants))
	for _, v := range variants {
		mv, err := store.CreateVariant(ctx, database.CreateVariantParams{
			MenuItemID: item.ID,
			Name:       strings.TrimSpace(v.Name),
			Price:      strings.TrimSpace(v.Price),
		})
		if err != nil {
			writeInternal(w, "create variant", err)
			return
		}
		created = append(created, mv)
	}

	if err := tx.Commit(ctx); err != nil {
		writeInternal(w, "commit menu item", err)
		return
	}

	now := h.now()
	campaigns, ok := h.liveCampaigns(w, r, now)
	if !ok {
		return
	}
	writeJSON(w, status, toMenuItemResponse(item, created, campaigns, now))
}

func (h *MenuHandler) liveCampaigns(w http.ResponseWriter, r *http.Request, now time.Time) ([]pricing.Campaign, bool) {
	active, err := h.store.ListActiveCampaigns(r.Context(), now)
	if err != nil {
		writeInternal(w, "list active campaigns", err)
		return nil, false
	}
	return service.PricingCampaigns(active), true
}

// validPrices rejects prices that would display as zero. Stored prices keep
// whatever currency formatting the admin typed.
func validPrices(w http.ResponseWriter, req menuItemRequest) bool {
	if !pricing.ParsePrice(req.BasePrice).IsPositive() {
		writeError(w, http.StatusBadRequest, "invalid base_price")
		return false
	}
	for i, v := range req.Variants {
		if !pricing.ParsePrice(v.Price).IsPositive() {
			writeError(w, http.StatusBadRequest, "variants["+strconv.Itoa(i)+"]: invalid price")
			return false
		}
	}
	return true
}
