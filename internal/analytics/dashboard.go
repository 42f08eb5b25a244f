package analytics

import (
	"errors"
	"strconv"
	"time"

	"github.com/genypos/api/internal/enum"
	"github.com/shopspring/decimal"
)

// TopN bounds every ranked list on the dashboard.
const TopN = 10

var ErrInvalidWindow = errors.New("window must be one of today, 7d, 30d")

// Window selects the revenue range and its bucketing.
type Window string

const (
	WindowToday Window = "today"
	Window7d    Window = "7d"
	Window30d   Window = "30d"
)

// ParseWindow defaults to today.
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case "", WindowToday:
		return WindowToday, nil
	case Window7d, Window30d:
		return Window(s), nil
	}
	return "", ErrInvalidWindow
}

// Hourly reports whether revenue is bucketed by hour.
func (w Window) Hourly() bool { return w == WindowToday }

// Days is the number of calendar days the window spans.
func (w Window) Days() int {
	switch w {
	case Window7d:
		return 7
	case Window30d:
		return 30
	}
	return 1
}

// Start is local midnight of the window's first day.
func (w Window) Start(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return today.AddDate(0, 0, -(w.Days() - 1))
}

// Settings are the per-section lookbacks in days, stored as app settings.
type Settings struct {
	TopItemsDays int `json:"top_items_days"`
	HotZonesDays int `json:"hot_zones_days"`
	LoyalDays    int `json:"loyal_days"`
	KitchenDays  int `json:"kitchen_days"`
}

func DefaultSettings() Settings {
	return Settings{TopItemsDays: 30, HotZonesDays: 30, LoyalDays: 30, KitchenDays: 7}
}

// SettingsFrom reads lookbacks from app setting values keyed by their
// setting name. Missing or non-positive values keep the default.
func SettingsFrom(values map[string]string) Settings {
	s := DefaultSettings()
	set := func(key string, dst *int) {
		if v, err := strconv.Atoi(values[key]); err == nil && v > 0 {
			*dst = v
		}
	}
	set(enum.SettingTopItemsDays, &s.TopItemsDays)
	set(enum.SettingHotZonesDays, &s.HotZonesDays)
	set(enum.SettingLoyalDays, &s.LoyalDays)
	set(enum.SettingKitchenDays, &s.KitchenDays)
	return s
}

// Earliest is the oldest creation time any dashboard section needs, so the
// caller can fetch one window of orders.
func (s Settings) Earliest(w Window, now time.Time, loc *time.Location) time.Time {
	earliest := w.Start(now, loc)
	for _, d := range []int{s.TopItemsDays, s.HotZonesDays, s.LoyalDays, s.KitchenDays} {
		if t := now.AddDate(0, 0, -d); t.Before(earliest) {
			earliest = t
		}
	}
	return earliest
}

// Dashboard is the full analytics payload.
type Dashboard struct {
	Window         Window          `json:"window"`
	GeneratedAt    time.Time       `json:"generated_at"`
	TotalOrders    int             `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	AvgOrderValue  decimal.Decimal `json:"avg_order_value"`
	Revenue        []Bucket        `json:"revenue"`
	TopItems       []Count         `json:"top_items"`
	HotZones       []Count         `json:"hot_zones"`
	LoyalCustomers []Customer      `json:"loyal_customers"`
	Kitchen        KitchenStats    `json:"kitchen"`
	Settings       Settings        `json:"settings"`
}

// Build composes the dashboard; each section filters orders to its own
// lookback.
func Build(orders []Order, w Window, s Settings, now time.Time, loc *time.Location) Dashboard {
	d := Dashboard{
		Window:       w,
		GeneratedAt:  now,
		Revenue:      Revenue(orders, w, now, loc),
		TopItems:     TopItems(Since(orders, now.AddDate(0, 0, -s.TopItemsDays)), TopN),
		HotZones:     HotZones(Since(orders, now.AddDate(0, 0, -s.HotZonesDays)), TopN),
		Kitchen:      Kitchen(Since(orders, now.AddDate(0, 0, -s.KitchenDays)), now, loc),
		Settings:     s,
		TotalRevenue: decimal.Zero,
	}
	d.LoyalCustomers = LoyalCustomers(Since(orders, now.AddDate(0, 0, -s.LoyalDays)), TopN)

	for _, b := range d.Revenue {
		d.TotalOrders += b.Orders
		d.TotalRevenue = d.TotalRevenue.Add(b.Revenue)
	}
	d.AvgOrderValue = decimal.Zero
	if d.TotalOrders > 0 {
		d.AvgOrderValue = d.TotalRevenue.Div(decimal.NewFromInt(int64(d.TotalOrders))).Round(2)
	}
	return d
}
