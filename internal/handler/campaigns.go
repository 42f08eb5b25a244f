package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/genypos/api/internal/database"
	"github.com/genypos/api/internal/enum"
	"github.com/genypos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// CampaignStore defines the database methods needed by campaign handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CampaignStore interface {
	ListCampaigns(ctx context.Context) ([]database.Campaign, error)
	ListActiveCampaigns(ctx context.Context, now time.Time) ([]database.Campaign, error)
	GetCampaign(ctx context.Context, id uuid.UUID) (database.Campaign, error)
	CreateCampaign(ctx context.Context, arg database.CreateCampaignParams) (database.Campaign, error)
	UpdateCampaign(ctx context.Context, arg database.UpdateCampaignParams) (database.Campaign, error)
	DeleteCampaign(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// CampaignHandler handles offers and coupons.
type CampaignHandler struct {
	store CampaignStore
	now   func() time.Time
}

// NewCampaignHandler creates a new CampaignHandler.
func NewCampaignHandler(store CampaignStore) *CampaignHandler {
	return &CampaignHandler{store: store, now: time.Now}
}

// RegisterRoutes registers the public endpoint.
// Expected to be mounted at /campaigns
func (h *CampaignHandler) RegisterRoutes(r chi.Router) {
	r.Get("/active", h.Active)
}

// RegisterAdminRoutes registers campaign management.
// Expected to be mounted at /admin/campaigns
func (h *CampaignHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type campaignRequest struct {
	Name          string     `json:"name" validate:"required"`
	Code          string     `json:"code"`
	Type          string     `json:"type" validate:"required,oneof=percentage fixed"`
	DiscountValue string     `json:"discount_value" validate:"required"`
	TargetType    string     `json:"target_type" validate:"required,oneof=all category item"`
	TargetID      string     `json:"target_id" validate:"required_unless=TargetType all"`
	IsActive      *bool      `json:"is_active"`
	EndDate       *time.Time `json:"end_date"`
}

type campaignResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Code          *string    `json:"code,omitempty"`
	RequiresCode  bool       `json:"requires_code"`
	Type          string     `json:"type"`
	DiscountValue string     `json:"discount_value"`
	TargetType    string     `json:"target_type"`
	TargetID      *string    `json:"target_id"`
	IsActive      bool       `json:"is_active"`
	Live          bool       `json:"live"`
	EndDate       *time.Time `json:"end_date"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toCampaignResponse(c database.Campaign, now time.Time) campaignResponse {
	return campaignResponse{
		ID:            c.ID,
		Name:          c.Name,
		Code:          textPtr(c.Code),
		RequiresCode:  c.Code.Valid,
		Type:          c.Type,
		DiscountValue: numericToString(c.DiscountValue),
		TargetType:    c.TargetType,
		TargetID:      textPtr(c.TargetID),
		IsActive:      c.IsActive,
		Live:          service.PricingCampaign(c).Live(now),
		EndDate:       timestamptzPtr(c.EndDate),
		CreatedAt:     c.CreatedAt,
	}
}

// --- Handlers ---

// Active lists campaigns live now for storefront banners. Coupon codes are
// never disclosed here.
func (h *CampaignHandler) Active(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	campaigns, err := h.store.ListActiveCampaigns(r.Context(), now)
	if err != nil {
		writeInternal(w, "list active campaigns", err)
		return
	}

	resp := make([]campaignResponse, len(campaigns))
	for i, c := range campaigns {
		resp[i] = toCampaignResponse(c, now)
		resp[i].Code = nil
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.store.ListCampaigns(r.Context())
	if err != nil {
		writeInternal(w, "list campaigns", err)
		return
	}

	now := h.now()
	resp := make([]campaignResponse, len(campaigns))
	for i, c := range campaigns {
		resp[i] = toCampaignResponse(c, now)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign ID")
		return
	}

	c, err := h.store.GetCampaign(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "campaign not found")
			return
		}
		writeInternal(w, "get campaign", err)
		return
	}

	writeJSON(w, http.StatusOK, toCampaignResponse(c, h.now()))
}

func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, ok := campaignParams(w, req)
	if !ok {
		return
	}

	c, err := h.store.CreateCampaign(r.Context(), database.CreateCampaignParams(p))
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "coupon code already in use")
			return
		}
		writeInternal(w, "create campaign", err)
		return
	}

	writeJSON(w, http.StatusCreated, toCampaignResponse(c, h.now()))
}

func (h *CampaignHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign ID")
		return
	}

	var req campaignRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, ok := campaignParams(w, req)
	if !ok {
		return
	}

	c, err := h.store.UpdateCampaign(r.Context(), database.UpdateCampaignParams{
		ID:            id,
		Name:          p.Name,
		Code:          p.Code,
		Type:          p.Type,
		DiscountValue: p.DiscountValue,
		TargetType:    p.TargetType,
		TargetID:      p.TargetID,
		IsActive:      p.IsActive,
		EndDate:       p.EndDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			writeError(w, http.StatusNotFound, "campaign not found")
		case isUniqueViolation(err):
			writeError(w, http.StatusConflict, "coupon code already in use")
		default:
			writeInternal(w, "update campaign", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, toCampaignResponse(c, h.now()))
}

func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign ID")
		return
	}

	if _, err := h.store.DeleteCampaign(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "campaign not found")
			return
		}
		writeInternal(w, "delete campaign", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// campaignFields mirrors CreateCampaignParams so both create and update can
// share validation.
type campaignFields struct {
	Name          string
	Code          pgtype.Text
	Type          string
	DiscountValue pgtype.Numeric
	TargetType    string
	TargetID      pgtype.Text
	IsActive      bool
	EndDate       pgtype.Timestamptz
}

func campaignParams(w http.ResponseWriter, req campaignRequest) (campaignFields, bool) {
	value, err := decimal.NewFromString(strings.TrimSpace(req.DiscountValue))
	if err != nil || !value.IsPositive() {
		writeError(w, http.StatusBadRequest, "discount_value must be a positive number")
		return campaignFields{}, false
	}
	if req.Type == enum.CampaignTypePercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		writeError(w, http.StatusBadRequest, "percentage discount cannot exceed 100")
		return campaignFields{}, false
	}

	targetID := optionalText(req.TargetID)
	if req.TargetType == enum.TargetAll {
		targetID = pgtype.Text{}
	}
	if req.TargetType == enum.TargetItem {
		if _, err := uuid.Parse(req.TargetID); err != nil {
			writeError(w, http.StatusBadRequest, "target_id must be a menu item ID")
			return campaignFields{}, false
		}
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	var end pgtype.Timestamptz
	if req.EndDate != nil {
		end = pgtype.Timestamptz{Time: *req.EndDate, Valid: true}
	}

	return campaignFields{
		Name:          strings.TrimSpace(req.Name),
		Code:          optionalText(req.Code),
		Type:          req.Type,
		DiscountValue: service.DecimalToNumeric(value),
		TargetType:    req.TargetType,
		TargetID:      targetID,
		IsActive:      active,
		EndDate:       end,
	}, true
}
