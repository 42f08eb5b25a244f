package analytics

import (
	"testing"
	"time"

	"github.com/genypos/api/internal/enum"
	"github.com/shopspring/decimal"
)

var ist = time.FixedZone("IST", 5*3600+1800)

// 2026-03-14 15:30 IST
var now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func at(t time.Time) *time.Time { return &t }

func sampleOrders() []Order {
	return []Order{
		{
			ID: "1", CustomerName: "Asha", CustomerPhone: "9000000001",
			Address: "12 MG Road, Indiranagar, Bengaluru", OrderType: enum.OrderTypeDelivery,
			Status: enum.OrderStatusDelivered, TotalAmount: decimal.NewFromInt(250),
			CreatedAt:   now.Add(-2 * time.Hour),
			PreparingAt: at(now.Add(-2*time.Hour + 5*time.Minute)),
			ReadyAt:     at(now.Add(-2*time.Hour + 15*time.Minute)),
			CompletedAt: at(now.Add(-2*time.Hour + 40*time.Minute)),
			Items:       []Item{{"Margherita", 2}, {"Coke", 1}},
		},
		{
			ID: "2", CustomerName: "Asha K", CustomerPhone: "9000000001",
			Address: "5th Cross, Indiranagar, Bengaluru", OrderType: enum.OrderTypeDelivery,
			Status: enum.OrderStatusPreparing, TotalAmount: decimal.NewFromInt(100),
			CreatedAt:   now.Add(-30 * time.Minute),
			PreparingAt: at(now.Add(-25 * time.Minute)),
			Items:       []Item{{"Farmhouse", 1}},
		},
		{
			ID: "3", CustomerName: "Ravi", CustomerPhone: "9000000002",
			Address: "Koramangala", OrderType: enum.OrderTypeDelivery,
			Status: enum.OrderStatusPending, TotalAmount: decimal.NewFromInt(50),
			CreatedAt: now.Add(-20 * time.Minute),
			Items:     []Item{{"Margherita", 1}},
		},
		{
			ID: "4", CustomerName: "Table 4", OrderType: enum.OrderTypeDineIn,
			Status: enum.OrderStatusPaymentCompleted, TotalAmount: decimal.NewFromInt(400),
			CreatedAt:   now.AddDate(0, 0, -3),
			PreparingAt: at(now.AddDate(0, 0, -3).Add(time.Minute)),
			ReadyAt:     at(now.AddDate(0, 0, -3).Add(11 * time.Minute)),
			CompletedAt: at(now.AddDate(0, 0, -3).Add(60 * time.Minute)),
			Items:       []Item{{"Coke", 4}},
		},
	}
}

func TestZone(t *testing.T) {
	tests := map[string]string{
		"12 MG Road, Indiranagar, Bengaluru": "Indiranagar",
		"Koramangala":                        "Koramangala",
		"  HSR Layout , Bengaluru ":          "HSR Layout",
		"12 MG Rd, Indiranagar, ":            "Indiranagar",
		"Whitefield, , Bengaluru,":           "Bengaluru",
		"Whitefield, , Bengaluru":            "",
		"":                                   "",
		" , ":                                "",
	}
	for in, want := range tests {
		if got := Zone(in); got != want {
			t.Errorf("Zone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTopItems_WeightedByQuantity(t *testing.T) {
	got := TopItems(sampleOrders(), 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0] != (Count{"Coke", 5}) || got[1] != (Count{"Margherita", 3}) {
		t.Errorf("got %+v", got)
	}
}

func TestHotZones_DeliveryOnly(t *testing.T) {
	got := HotZones(sampleOrders(), TopN)
	want := []Count{{"Indiranagar", 2}, {"Koramangala", 1}}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLoyalCustomers_MostRecentName(t *testing.T) {
	got := LoyalCustomers(sampleOrders(), TopN)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (orders without phone are skipped)", len(got))
	}
	if got[0].Phone != "9000000001" || got[0].Orders != 2 || got[0].Name != "Asha K" {
		t.Errorf("top customer = %+v", got[0])
	}
}

func TestKitchen(t *testing.T) {
	got := Kitchen(sampleOrders(), now, ist)
	// prep: 10m and 10m
	if got.AvgPrepMinutes != 10 {
		t.Errorf("avg prep = %v, want 10", got.AvgPrepMinutes)
	}
	// completion: 40m and 60m
	if got.AvgCompletionMinutes != 50 {
		t.Errorf("avg completion = %v, want 50", got.AvgCompletionMinutes)
	}
	// order 2 has been preparing for 25m without being ready
	if got.DelayedOrders != 1 {
		t.Errorf("delayed = %d, want 1", got.DelayedOrders)
	}
	// 15:00 IST holds orders 2, 3 and the dine-in order from three days ago
	if got.PeakHour != 15 || got.PeakHourOrders != 3 {
		t.Errorf("peak = %d (%d orders), want 15 (3)", got.PeakHour, got.PeakHourOrders)
	}
}

func TestRevenue_TodayHourly(t *testing.T) {
	buckets := Revenue(sampleOrders(), WindowToday, now, ist)
	if len(buckets) != 24 {
		t.Fatalf("len = %d, want 24", len(buckets))
	}
	if buckets[13].Orders != 1 || !buckets[13].Revenue.Equal(decimal.NewFromInt(250)) {
		t.Errorf("13:00 bucket = %+v", buckets[13])
	}
	if buckets[15].Orders != 2 || !buckets[15].Revenue.Equal(decimal.NewFromInt(150)) {
		t.Errorf("15:00 bucket = %+v", buckets[15])
	}
}

func TestRevenue_DailyIncludesEmptyDays(t *testing.T) {
	buckets := Revenue(sampleOrders(), Window7d, now, ist)
	if len(buckets) != 7 {
		t.Fatalf("len = %d, want 7", len(buckets))
	}
	if buckets[6].Label != "2026-03-14" || buckets[6].Orders != 3 {
		t.Errorf("last bucket = %+v", buckets[6])
	}
	if buckets[3].Label != "2026-03-11" || !buckets[3].Revenue.Equal(decimal.NewFromInt(400)) {
		t.Errorf("bucket 3 = %+v", buckets[3])
	}
	if buckets[0].Orders != 0 || !buckets[0].Revenue.IsZero() {
		t.Errorf("first bucket should be empty, got %+v", buckets[0])
	}
}

func TestBuild_NoOrders(t *testing.T) {
	d := Build(nil, Window30d, DefaultSettings(), now, ist)
	if d.TotalOrders != 0 || !d.TotalRevenue.IsZero() || !d.AvgOrderValue.IsZero() {
		t.Errorf("totals = %d/%s/%s, want zero", d.TotalOrders, d.TotalRevenue, d.AvgOrderValue)
	}
	if len(d.Revenue) != 30 {
		t.Errorf("revenue buckets = %d, want 30", len(d.Revenue))
	}
	if d.TopItems == nil || d.HotZones == nil || d.LoyalCustomers == nil {
		t.Error("ranked lists must be empty, not nil")
	}
	if d.Kitchen.PeakHour != -1 || d.Kitchen.DelayedOrders != 0 {
		t.Errorf("kitchen = %+v", d.Kitchen)
	}
}

func TestBuild_SectionWindows(t *testing.T) {
	s := Settings{TopItemsDays: 1, HotZonesDays: 30, LoyalDays: 30, KitchenDays: 1}
	d := Build(sampleOrders(), Window7d, s, now, ist)
	for _, c := range d.TopItems {
		if c.Name == "Coke" && c.Count != 1 {
			t.Errorf("Coke = %d, want 1 (3-day-old order outside the 1 day window)", c.Count)
		}
	}
	if d.Kitchen.AvgCompletionMinutes != 40 {
		t.Errorf("avg completion = %v, want 40", d.Kitchen.AvgCompletionMinutes)
	}
	if d.TotalOrders != 4 || !d.AvgOrderValue.Equal(decimal.NewFromInt(200)) {
		t.Errorf("totals = %d/%s", d.TotalOrders, d.AvgOrderValue)
	}
}

func TestSettingsFrom(t *testing.T) {
	s := SettingsFrom(map[string]string{
		enum.SettingLoyalDays:    "90",
		enum.SettingKitchenDays:  "-2",
		enum.SettingTopItemsDays: "abc",
	})
	if s.LoyalDays != 90 || s.KitchenDays != 7 || s.TopItemsDays != 30 || s.HotZonesDays != 30 {
		t.Errorf("got %+v", s)
	}
}

func TestParseWindow(t *testing.T) {
	if w, err := ParseWindow(""); err != nil || w != WindowToday {
		t.Errorf("empty = %q, %v", w, err)
	}
	if _, err := ParseWindow("90d"); err != ErrInvalidWindow {
		t.Errorf("90d error = %v", err)
	}
}

func TestSinceDoesNotMutate(t *testing.T) {
	in := sampleOrders()
	out := Since(in, now.Add(-time.Hour))
	if len(out) != 2 || len(in) != 4 {
		t.Errorf("len(out)=%d len(in)=%d", len(out), len(in))
	}
}
