// Package pricing computes display and chargeable prices for menu items from
// their base price and the campaigns that are live at a given instant.
//
// Every function here is pure and never fails on malformed data: an
// unparseable price is 0 and an unknown campaign type grants no discount.
package pricing

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/genypos/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Coupon lookup failures. Callers message each one differently.
var (
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponExpired       = errors.New("coupon expired")
	ErrCouponInactive      = errors.New("coupon inactive")
	ErrCouponNotApplicable = errors.New("coupon does not apply to any item in the cart")
)

var hundred = decimal.NewFromInt(100)

// Campaign is an offer as seen by the engine. An empty Code marks an
// auto-apply campaign.
type Campaign struct {
	ID            string
	Name          string
	Code          string
	Type          string
	DiscountValue decimal.Decimal
	TargetType    string
	TargetID      string
	IsActive      bool
	EndDate       *time.Time
}

// Live reports whether the campaign is usable at now. An end date in the past
// wins over the IsActive flag.
func (c Campaign) Live(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	return c.EndDate == nil || !c.EndDate.Before(now)
}

// Item identifies what a campaign may target.
type Item struct {
	ID       string
	Category string
}

// Result is the priced view of one unit of an item.
type Result struct {
	Original   decimal.Decimal
	Discounted decimal.Decimal
	Applied    *Campaign
}

// Discount is the amount taken off Original.
func (r Result) Discount() decimal.Decimal {
	return r.Original.Sub(r.Discounted)
}

// ParsePrice accepts numbers or currency formatted strings ("₹1,299", "199")
// and returns 0 when nothing parseable remains.
func ParsePrice(v any) decimal.Decimal {
	switch p := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return nonNegative(p)
	case float64:
		return nonNegative(decimal.NewFromFloat(p))
	case float32:
		return nonNegative(decimal.NewFromFloat32(p))
	case int:
		return nonNegative(decimal.NewFromInt(int64(p)))
	case int32:
		return nonNegative(decimal.NewFromInt32(p))
	case int64:
		return nonNegative(decimal.NewFromInt(p))
	case string:
		return parsePriceString(p)
	case []byte:
		return parsePriceString(string(p))
	}
	return decimal.Zero
}

func parsePriceString(s string) decimal.Decimal {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Price applies the single best auto-apply campaign to base. The most
// specific target wins (item, then category, then all); among equally
// specific campaigns the larger discount wins, then the lower ID.
func Price(base any, item Item, campaigns []Campaign, now time.Time) Result {
	original := ParsePrice(base)
	res := Result{Original: original, Discounted: original}

	var (
		best         *Campaign
		bestSpec     int
		bestDiscount decimal.Decimal
	)
	for i := range campaigns {
		c := campaigns[i]
		if c.Code != "" || !c.Live(now) {
			continue
		}
		spec := specificity(c, item)
		if spec == 0 {
			continue
		}
		d := discountFor(c, original)
		if best == nil || better(spec, d, c.ID, bestSpec, bestDiscount, best.ID) {
			best = &campaigns[i]
			bestSpec = spec
			bestDiscount = d
		}
	}
	if best == nil {
		return res
	}

	applied := *best
	res.Applied = &applied
	res.Discounted = clamp(original.Sub(bestDiscount).Round(0), original)
	return res
}

func better(spec int, d decimal.Decimal, id string, bestSpec int, bestD decimal.Decimal, bestID string) bool {
	if spec != bestSpec {
		return spec > bestSpec
	}
	if !d.Equal(bestD) {
		return d.GreaterThan(bestD)
	}
	return id < bestID
}

// specificity returns 0 when the campaign does not target item.
func specificity(c Campaign, item Item) int {
	switch c.TargetType {
	case enum.TargetItem:
		if c.TargetID != "" && c.TargetID == item.ID {
			return 3
		}
	case enum.TargetCategory:
		if c.TargetID != "" && c.TargetID == item.Category {
			return 2
		}
	case enum.TargetAll:
		return 1
	}
	return 0
}

// Matches reports whether c targets item, ignoring liveness and code.
func Matches(c Campaign, item Item) bool {
	return specificity(c, item) > 0
}

// discountFor never exceeds amount.
func discountFor(c Campaign, amount decimal.Decimal) decimal.Decimal {
	if c.DiscountValue.IsNegative() || !amount.IsPositive() {
		return decimal.Zero
	}
	var d decimal.Decimal
	switch c.Type {
	case enum.CampaignTypePercentage:
		d = amount.Mul(c.DiscountValue).Div(hundred)
	case enum.CampaignTypeFixed:
		d = c.DiscountValue
	default:
		return decimal.Zero
	}
	return decimal.Min(d, amount)
}

func clamp(d, upper decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(upper) {
		return upper
	}
	return d
}

// Line is one cart line after auto-apply discounts.
type Line struct {
	Item   Item
	Amount decimal.Decimal
}

// CouponResult describes a coupon applied on top of a cart.
type CouponResult struct {
	Campaign Campaign
	Subtotal decimal.Decimal
	Eligible decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// ApplyCoupon looks code up (case-insensitively) among campaigns and applies
// it to the already discounted lines, so discounts stack sequentially. Only
// lines the coupon targets count towards its base.
func ApplyCoupon(code string, lines []Line, campaigns []Campaign, now time.Time) (CouponResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return CouponResult{}, ErrCouponNotFound
	}

	matches := make([]Campaign, 0, 1)
	for _, c := range campaigns {
		if c.Code != "" && strings.EqualFold(c.Code, code) {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return CouponResult{}, ErrCouponNotFound
	}
	// Prefer a live match when the same code was reused.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Live(now) && !matches[j].Live(now)
	})
	c := matches[0]
	if !c.IsActive {
		return CouponResult{}, ErrCouponInactive
	}
	if !c.Live(now) {
		return CouponResult{}, ErrCouponExpired
	}

	subtotal := decimal.Zero
	eligible := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Amount)
		if Matches(c, l.Item) {
			eligible = eligible.Add(l.Amount)
		}
	}
	if !eligible.IsPositive() {
		return CouponResult{}, ErrCouponNotApplicable
	}

	discount := clamp(discountFor(c, eligible).Round(0), eligible)
	return CouponResult{
		Campaign: c,
		Subtotal: subtotal,
		Eligible: eligible,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}, nil
}
