package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/genypos/api/internal/enum"
	"github.com/shopspring/decimal"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptrTime(t time.Time) *time.Time { return &t }

// =====================
// ParsePrice
// =====================

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"plain string", "199", "199"},
		{"currency symbol", "₹199", "199"},
		{"thousands separator", "₹1,299.50", "1299.5"},
		{"float", 249.5, "249.5"},
		{"int", 300, "300"},
		{"decimal", dec("12.25"), "12.25"},
		{"empty", "", "0"},
		{"garbage", "free!", "0"},
		{"two dots", "1.2.3", "0"},
		{"nil", nil, "0"},
		{"negative float", -5.0, "0"},
		{"unsupported type", struct{}{}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrice(tt.in)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("ParsePrice(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

// =====================
// Price
// =====================

func TestPrice_NoCampaigns(t *testing.T) {
	res := Price("₹199", Item{ID: "m1", Category: "Pizza"}, nil, now)
	if !res.Original.Equal(dec("199")) || !res.Discounted.Equal(dec("199")) {
		t.Errorf("got original=%s discounted=%s, want 199/199", res.Original, res.Discounted)
	}
	if res.Applied != nil {
		t.Errorf("expected no campaign, got %q", res.Applied.ID)
	}
}

func TestPrice_PercentageRoundsToWholeUnit(t *testing.T) {
	campaigns := []Campaign{{
		ID: "c1", Type: enum.CampaignTypePercentage, DiscountValue: dec("20"),
		TargetType: enum.TargetCategory, TargetID: "Pizza", IsActive: true,
	}}
	res := Price("₹199", Item{ID: "m1", Category: "Pizza"}, campaigns, now)
	// 199 - 39.8 = 159.2
	if !res.Discounted.Equal(dec("159")) {
		t.Errorf("discounted = %s, want 159", res.Discounted)
	}
	if res.Applied == nil || res.Applied.ID != "c1" {
		t.Fatal("expected campaign c1 to be applied")
	}
	if !res.Discount().Equal(dec("40")) {
		t.Errorf("discount = %s, want 40", res.Discount())
	}
}

func TestPrice_FixedLargerThanPriceClampsToZero(t *testing.T) {
	campaigns := []Campaign{{
		ID: "c1", Type: enum.CampaignTypeFixed, DiscountValue: dec("500"),
		TargetType: enum.TargetAll, IsActive: true,
	}}
	res := Price(120, Item{ID: "m1"}, campaigns, now)
	if !res.Discounted.Equal(decimal.Zero) {
		t.Errorf("discounted = %s, want 0", res.Discounted)
	}
}

func TestPrice_ItemBeatsCategoryBeatsAll(t *testing.T) {
	campaigns := []Campaign{
		{ID: "all", Type: enum.CampaignTypePercentage, DiscountValue: dec("50"), TargetType: enum.TargetAll, IsActive: true},
		{ID: "cat", Type: enum.CampaignTypePercentage, DiscountValue: dec("30"), TargetType: enum.TargetCategory, TargetID: "Pizza", IsActive: true},
		{ID: "item", Type: enum.CampaignTypeFixed, DiscountValue: dec("10"), TargetType: enum.TargetItem, TargetID: "m1", IsActive: true},
	}
	res := Price("200", Item{ID: "m1", Category: "Pizza"}, campaigns, now)
	if res.Applied == nil || res.Applied.ID != "item" {
		t.Fatalf("applied = %+v, want item campaign", res.Applied)
	}
	if !res.Discounted.Equal(dec("190")) {
		t.Errorf("discounted = %s, want 190", res.Discounted)
	}

	res = Price("200", Item{ID: "m2", Category: "Pizza"}, campaigns, now)
	if res.Applied == nil || res.Applied.ID != "cat" {
		t.Fatalf("applied = %+v, want category campaign", res.Applied)
	}

	res = Price("200", Item{ID: "m3", Category: "Drinks"}, campaigns, now)
	if res.Applied == nil || res.Applied.ID != "all" {
		t.Fatalf("applied = %+v, want all campaign", res.Applied)
	}
}

func TestPrice_SameSpecificityLargerDiscountThenID(t *testing.T) {
	campaigns := []Campaign{
		{ID: "b", Type: enum.CampaignTypeFixed, DiscountValue: dec("20"), TargetType: enum.TargetAll, IsActive: true},
		{ID: "a", Type: enum.CampaignTypeFixed, DiscountValue: dec("20"), TargetType: enum.TargetAll, IsActive: true},
		{ID: "c", Type: enum.CampaignTypeFixed, DiscountValue: dec("5"), TargetType: enum.TargetAll, IsActive: true},
	}
	res := Price("100", Item{ID: "m1"}, campaigns, now)
	if res.Applied == nil || res.Applied.ID != "a" {
		t.Fatalf("applied = %+v, want a", res.Applied)
	}
}

func TestPrice_SkipsInactiveExpiredAndCoded(t *testing.T) {
	campaigns := []Campaign{
		{ID: "off", Type: enum.CampaignTypeFixed, DiscountValue: dec("10"), TargetType: enum.TargetAll, IsActive: false},
		{ID: "expired", Type: enum.CampaignTypeFixed, DiscountValue: dec("10"), TargetType: enum.TargetAll, IsActive: true, EndDate: ptrTime(now.Add(-time.Minute))},
		{ID: "coupon", Code: "SAVE10", Type: enum.CampaignTypeFixed, DiscountValue: dec("10"), TargetType: enum.TargetAll, IsActive: true},
	}
	res := Price("100", Item{ID: "m1"}, campaigns, now)
	if res.Applied != nil {
		t.Errorf("expected no campaign, got %q", res.Applied.ID)
	}
	if !res.Discounted.Equal(dec("100")) {
		t.Errorf("discounted = %s, want 100", res.Discounted)
	}
}

func TestPrice_UnknownTypeNoDiscount(t *testing.T) {
	campaigns := []Campaign{{ID: "x", Type: "bogo", DiscountValue: dec("50"), TargetType: enum.TargetAll, IsActive: true}}
	res := Price("100", Item{ID: "m1"}, campaigns, now)
	if !res.Discounted.Equal(dec("100")) {
		t.Errorf("discounted = %s, want 100", res.Discounted)
	}
}

func TestPrice_EndDateInFutureIsLive(t *testing.T) {
	campaigns := []Campaign{{
		ID: "c1", Type: enum.CampaignTypeFixed, DiscountValue: dec("10"),
		TargetType: enum.TargetAll, IsActive: true, EndDate: ptrTime(now.Add(time.Hour)),
	}}
	res := Price("100", Item{ID: "m1"}, campaigns, now)
	if !res.Discounted.Equal(dec("90")) {
		t.Errorf("discounted = %s, want 90", res.Discounted)
	}
}

// =====================
// ApplyCoupon
// =====================

func couponCampaigns() []Campaign {
	return []Campaign{
		{ID: "auto", Type: enum.CampaignTypePercentage, DiscountValue: dec("25"), TargetType: enum.TargetAll, IsActive: true},
		{ID: "c10", Code: "SAVE10", Type: enum.CampaignTypePercentage, DiscountValue: dec("10"), TargetType: enum.TargetAll, IsActive: true},
		{ID: "pizza", Code: "PIZZA50", Type: enum.CampaignTypeFixed, DiscountValue: dec("50"), TargetType: enum.TargetCategory, TargetID: "Pizza", IsActive: true},
		{ID: "old", Code: "OLD", Type: enum.CampaignTypeFixed, DiscountValue: dec("50"), TargetType: enum.TargetAll, IsActive: true, EndDate: ptrTime(now.Add(-24 * time.Hour))},
		{ID: "off", Code: "OFF", Type: enum.CampaignTypeFixed, DiscountValue: dec("50"), TargetType: enum.TargetAll, IsActive: false},
	}
}

func TestApplyCoupon_StacksOnAutoDiscount(t *testing.T) {
	campaigns := couponCampaigns()
	item := Item{ID: "m1", Category: "Pizza"}
	auto := Price("200", item, campaigns, now)
	if !auto.Discounted.Equal(dec("150")) {
		t.Fatalf("auto discounted = %s, want 150", auto.Discounted)
	}

	res, err := ApplyCoupon("save10", []Line{{Item: item, Amount: auto.Discounted}}, campaigns, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Total.Equal(dec("135")) {
		t.Errorf("total = %s, want 135", res.Total)
	}
	if res.Campaign.ID != "c10" {
		t.Errorf("campaign = %q, want c10", res.Campaign.ID)
	}
}

func TestApplyCoupon_OnlyEligibleLinesCount(t *testing.T) {
	lines := []Line{
		{Item: Item{ID: "m1", Category: "Pizza"}, Amount: dec("300")},
		{Item: Item{ID: "m2", Category: "Drinks"}, Amount: dec("100")},
	}
	res, err := ApplyCoupon("PIZZA50", lines, couponCampaigns(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Eligible.Equal(dec("300")) {
		t.Errorf("eligible = %s, want 300", res.Eligible)
	}
	if !res.Subtotal.Equal(dec("400")) || !res.Total.Equal(dec("350")) {
		t.Errorf("subtotal/total = %s/%s, want 400/350", res.Subtotal, res.Total)
	}
}

func TestApplyCoupon_Errors(t *testing.T) {
	lines := []Line{{Item: Item{ID: "m2", Category: "Drinks"}, Amount: dec("100")}}
	tests := []struct {
		code string
		want error
	}{
		{"", ErrCouponNotFound},
		{"NOPE", ErrCouponNotFound},
		{"old", ErrCouponExpired},
		{"OFF", ErrCouponInactive},
		{"PIZZA50", ErrCouponNotApplicable},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, err := ApplyCoupon(tt.code, lines, couponCampaigns(), now)
			if !errors.Is(err, tt.want) {
				t.Errorf("ApplyCoupon(%q) error = %v, want %v", tt.code, err, tt.want)
			}
		})
	}
}

func TestApplyCoupon_FixedCappedAtEligible(t *testing.T) {
	lines := []Line{{Item: Item{ID: "m1", Category: "Pizza"}, Amount: dec("30")}}
	res, err := ApplyCoupon("pizza50", lines, couponCampaigns(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Total.Equal(decimal.Zero) {
		t.Errorf("total = %s, want 0", res.Total)
	}
}
