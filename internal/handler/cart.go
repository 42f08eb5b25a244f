package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/genypos/api/internal/pricing"
	"github.com/genypos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Quoter prices carts. Satisfied by *service.Quoter.
type Quoter interface {
	Quote(ctx context.Context, lines []service.CartLine, coupon string) (*service.Quote, error)
}

// CartHandler prices storefront, POS and captain carts through the same
// path order creation uses.
type CartHandler struct {
	quoter Quoter
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(quoter Quoter) *CartHandler {
	return &CartHandler{quoter: quoter}
}

// RegisterRoutes registers cart endpoints on the given Chi router.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Post("/cart/quote", h.Quote)
	r.Post("/coupons/validate", h.ValidateCoupon)
}

// --- Request / Response types ---

type cartLineRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"required"`
	VariantID  string `json:"variant_id"`
	Quantity   int32  `json:"quantity" validate:"gt=0"`
}

type quoteRequest struct {
	Items      []cartLineRequest `json:"items" validate:"required,min=1,dive"`
	CouponCode string            `json:"coupon_code"`
}

type validateCouponRequest struct {
	Code  string            `json:"code" validate:"required"`
	Items []cartLineRequest `json:"items" validate:"required,min=1,dive"`
}

type quoteLineResponse struct {
	MenuItemID   uuid.UUID `json:"menu_item_id"`
	Name         string    `json:"name"`
	VariantName  *string   `json:"variant_name"`
	Quantity     int32     `json:"quantity"`
	UnitOriginal string    `json:"unit_original"`
	UnitPrice    string    `json:"unit_price"`
	Subtotal     string    `json:"subtotal"`
	CampaignID   *string   `json:"campaign_id"`
	CampaignName *string   `json:"campaign"`
}

type quoteResponse struct {
	Items          []quoteLineResponse `json:"items"`
	Original       string              `json:"original"`
	AutoDiscount   string              `json:"auto_discount"`
	Subtotal       string              `json:"subtotal"`
	CouponCode     *string             `json:"coupon_code"`
	CouponDiscount string              `json:"coupon_discount"`
	Discount       string              `json:"discount"`
	Total          string              `json:"total"`
}

func toQuoteResponse(q *service.Quote) quoteResponse {
	resp := quoteResponse{
		Items:          make([]quoteLineResponse, len(q.Lines)),
		Original:       q.Original.StringFixed(2),
		AutoDiscount:   q.AutoDiscount.StringFixed(2),
		Subtotal:       q.Subtotal.StringFixed(2),
		CouponDiscount: q.CouponDiscount.StringFixed(2),
		Discount:       q.Discount().StringFixed(2),
		Total:          q.Total.StringFixed(2),
	}
	if q.CouponCode != "" {
		code := q.CouponCode
		resp.CouponCode = &code
	}
	for i, l := range q.Lines {
		line := quoteLineResponse{
			MenuItemID:   l.MenuItemID,
			Name:         l.Name,
			Quantity:     l.Quantity,
			UnitOriginal: l.UnitOriginal.StringFixed(2),
			UnitPrice:    l.UnitPrice.StringFixed(2),
			Subtotal:     l.Subtotal.StringFixed(2),
		}
		if l.VariantName != "" {
			v := l.VariantName
			line.VariantName = &v
		}
		if l.CampaignID != "" {
			id, name := l.CampaignID, l.CampaignName
			line.CampaignID = &id
			line.CampaignName = &name
		}
		resp.Items[i] = line
	}
	return resp
}

func toCartLines(items []cartLineRequest) []service.CartLine {
	lines := make([]service.CartLine, len(items))
	for i, it := range items {
		lines[i] = service.CartLine{
			MenuItemID: it.MenuItemID,
			VariantID:  it.VariantID,
			Quantity:   it.Quantity,
		}
	}
	return lines
}

// --- Handlers ---

// Quote prices a cart with live campaigns and an optional coupon.
func (h *CartHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	q, err := h.quoter.Quote(r.Context(), toCartLines(req.Items), strings.TrimSpace(req.CouponCode))
	if err != nil {
		writeQuoteError(w, "quote cart", err)
		return
	}

	writeJSON(w, http.StatusOK, toQuoteResponse(q))
}

// ValidateCoupon checks a coupon against a cart and reports the discount it
// would grant.
func (h *CartHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if !decodeBody(w, r, &req) {
		return
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	q, err := h.quoter.Quote(r.Context(), toCartLines(req.Items), code)
	if err != nil {
		writeQuoteError(w, "validate coupon", err)
		return
	}

	writeJSON(w, http.StatusOK, toQuoteResponse(q))
}

// --- Helpers ---

// writeQuoteError maps pricing and cart errors. An unknown coupon is 404;
// a known coupon that cannot be used is 422 with its own message.
func writeQuoteError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, pricing.ErrCouponNotFound):
		writeError(w, http.StatusNotFound, "invalid coupon code")
	case errors.Is(err, pricing.ErrCouponExpired):
		writeError(w, http.StatusUnprocessableEntity, "coupon has expired")
	case errors.Is(err, pricing.ErrCouponInactive):
		writeError(w, http.StatusUnprocessableEntity, "coupon is not active")
	case errors.Is(err, pricing.ErrCouponNotApplicable):
		writeError(w, http.StatusUnprocessableEntity, "coupon does not apply to any item in the cart")
	case isCartValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeInternal(w, op, err)
	}
}

// isCartValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request.
func isCartValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidMenuItemID) ||
		errors.Is(err, service.ErrMenuItemNotFound) ||
		errors.Is(err, service.ErrInvalidVariantID) ||
		errors.Is(err, service.ErrVariantNotFound)
}
