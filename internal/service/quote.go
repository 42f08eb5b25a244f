package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/genypos/api/internal/database"
	"github.com/genypos/api/internal/pricing"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// QuoteStore defines the DB methods needed to price a cart.
// Satisfied by *database.Queries (and its WithTx variant).
type QuoteStore interface {
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	ListVariantsByMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]database.MenuVariant, error)
	ListActiveCampaigns(ctx context.Context, now time.Time) ([]database.Campaign, error)
	GetCampaignByCode(ctx context.Context, code string) (database.Campaign, error)
}

// CartLine is one requested line of a cart.
type CartLine struct {
	MenuItemID string
	VariantID  string
	Quantity   int32
}

// QuoteLine is a priced cart line. UnitPrice is after auto-apply campaigns.
type QuoteLine struct {
	MenuItemID   uuid.UUID
	Name         string
	Category     string
	VariantName  string
	Quantity     int32
	UnitOriginal decimal.Decimal
	UnitPrice    decimal.Decimal
	Subtotal     decimal.Decimal
	CampaignID   string
	CampaignName string
}

// Quote is a fully priced cart.
type Quote struct {
	Lines          []QuoteLine
	Original       decimal.Decimal
	AutoDiscount   decimal.Decimal
	Subtotal       decimal.Decimal
	CouponCode     string
	CouponDiscount decimal.Decimal
	Total          decimal.Decimal
}

// Discount is everything taken off the original prices.
func (q *Quote) Discount() decimal.Decimal {
	return q.AutoDiscount.Add(q.CouponDiscount)
}

// Quoter prices carts for the storefront and for coupon checks. Order
// creation runs the same code inside its transaction.
type Quoter struct {
	store QuoteStore
	now   func() time.Time
}

// NewQuoter creates a new Quoter.
func NewQuoter(store QuoteStore) *Quoter {
	return &Quoter{store: store, now: time.Now}
}

// Quote prices lines with the campaigns live now and applies coupon when set.
func (q *Quoter) Quote(ctx context.Context, lines []CartLine, coupon string) (*Quote, error) {
	return quoteCart(ctx, q.store, lines, coupon, q.now())
}

func quoteCart(ctx context.Context, store QuoteStore, lines []CartLine, coupon string, now time.Time) (*Quote, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyItems
	}

	active, err := store.ListActiveCampaigns(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list active campaigns: %w", err)
	}
	campaigns := PricingCampaigns(active)

	quote := &Quote{
		Original:       decimal.Zero,
		AutoDiscount:   decimal.Zero,
		Subtotal:       decimal.Zero,
		CouponDiscount: decimal.Zero,
	}
	couponLines := make([]pricing.Line, 0, len(lines))

	for i, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		itemID, err := uuid.Parse(line.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidMenuItemID)
		}
		item, err := store.GetMenuItem(ctx, itemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("item[%d]: %w", i, ErrMenuItemNotFound)
			}
			return nil, fmt.Errorf("item[%d]: get menu item: %w", i, err)
		}

		// A chosen variant supersedes the base price.
		var base any = item.BasePrice
		variantName := ""
		if line.VariantID != "" {
			variant, err := findVariant(ctx, store, item.ID, line.VariantID)
			if err != nil {
				return nil, fmt.Errorf("item[%d]: %w", i, err)
			}
			base = variant.Price
			variantName = variant.Name
		}

		res := pricing.Price(base, PricingItem(item), campaigns, now)
		qty := decimal.NewFromInt32(line.Quantity)
		ql := QuoteLine{
			MenuItemID:   item.ID,
			Name:         item.Name,
			Category:     item.Category,
			VariantName:  variantName,
			Quantity:     line.Quantity,
			UnitOriginal: res.Original,
			UnitPrice:    res.Discounted,
			Subtotal:     res.Discounted.Mul(qty),
		}
		if res.Applied != nil {
			ql.CampaignID = res.Applied.ID
			ql.CampaignName = res.Applied.Name
		}

		quote.Lines = append(quote.Lines, ql)
		quote.Original = quote.Original.Add(res.Original.Mul(qty))
		quote.AutoDiscount = quote.AutoDiscount.Add(res.Discount().Mul(qty))
		quote.Subtotal = quote.Subtotal.Add(ql.Subtotal)
		couponLines = append(couponLines, pricing.Line{Item: PricingItem(item), Amount: ql.Subtotal})
	}

	quote.Total = quote.Subtotal
	if coupon == "" {
		return quote, nil
	}

	c, err := store.GetCampaignByCode(ctx, coupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pricing.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	applied, err := pricing.ApplyCoupon(coupon, couponLines, []pricing.Campaign{PricingCampaign(c)}, now)
	if err != nil {
		return nil, err
	}
	quote.CouponCode = applied.Campaign.Code
	quote.CouponDiscount = applied.Discount
	quote.Total = applied.Total
	return quote, nil
}

func findVariant(ctx context.Context, store QuoteStore, menuItemID uuid.UUID, rawID string) (database.MenuVariant, error) {
	vid, err := uuid.Parse(rawID)
	if err != nil {
		return database.MenuVariant{}, ErrInvalidVariantID
	}
	variants, err := store.ListVariantsByMenuItem(ctx, menuItemID)
	if err != nil {
		return database.MenuVariant{}, fmt.Errorf("list variants: %w", err)
	}
	for _, v := range variants {
		if v.ID == vid {
			return v, nil
		}
	}
	return database.MenuVariant{}, ErrVariantNotFound
}
