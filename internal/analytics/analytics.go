// Package analytics computes the dashboard aggregates from a window of
// historical orders. Every function is pure: inputs are never modified and an
// empty input yields zeroed results.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/genypos/api/internal/enum"
	"github.com/shopspring/decimal"
)

// DelayThreshold is how long an order may sit in the kitchen before it
// counts as delayed.
const DelayThreshold = 20 * time.Minute

// Order is the read model the aggregations consume.
type Order struct {
	ID            string
	CustomerName  string
	CustomerPhone string
	Address       string
	Status        string
	OrderType     string
	TotalAmount   decimal.Decimal
	CreatedAt     time.Time
	PreparingAt   *time.Time
	ReadyAt       *time.Time
	CompletedAt   *time.Time
	Items         []Item
}

// Item is one order line.
type Item struct {
	MenuItemName string
	Quantity     int
}

// Count is a named tally.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Customer is a repeat customer identified by phone.
type Customer struct {
	Phone       string    `json:"phone"`
	Name        string    `json:"name"`
	Orders      int       `json:"orders"`
	LastOrderAt time.Time `json:"last_order_at"`
}

// KitchenStats summarises kitchen throughput.
type KitchenStats struct {
	AvgPrepMinutes       float64 `json:"avg_prep_minutes"`
	AvgCompletionMinutes float64 `json:"avg_completion_minutes"`
	DelayedOrders        int     `json:"delayed_orders"`
	// PeakHour is -1 when there are no orders.
	PeakHour       int `json:"peak_hour"`
	PeakHourOrders int `json:"peak_hour_orders"`
}

// Bucket is one revenue bar.
type Bucket struct {
	Label   string          `json:"label"`
	Start   time.Time       `json:"start"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Since returns the orders created at or after from.
func Since(orders []Order, from time.Time) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if !o.CreatedAt.Before(from) {
			out = append(out, o)
		}
	}
	return out
}

// TopItems ranks menu items by quantity sold.
func TopItems(orders []Order, n int) []Count {
	tally := map[string]int{}
	for _, o := range orders {
		if o.Status == enum.OrderStatusCancelled {
			continue
		}
		for _, it := range o.Items {
			if it.MenuItemName == "" || it.Quantity <= 0 {
				continue
			}
			tally[it.MenuItemName] += it.Quantity
		}
	}
	return rank(tally, n)
}

// Zone extracts a best-effort area name from a free-text address: the
// trimmed second-to-last comma separated segment, or the whole address when
// it has no commas. Segments are taken literally, so a trailing comma makes
// the last real segment the zone. This is a heuristic, not geocoding.
func Zone(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) == 1 {
		return strings.TrimSpace(address)
	}
	return strings.TrimSpace(parts[len(parts)-2])
}

// HotZones ranks delivery areas by order count.
func HotZones(orders []Order, n int) []Count {
	tally := map[string]int{}
	for _, o := range orders {
		if o.OrderType != enum.OrderTypeDelivery || o.Status == enum.OrderStatusCancelled {
			continue
		}
		if z := Zone(o.Address); z != "" {
			tally[z]++
		}
	}
	return rank(tally, n)
}

// LoyalCustomers ranks customers by order count, reporting the most recent
// name each phone number ordered under.
func LoyalCustomers(orders []Order, n int) []Customer {
	byPhone := map[string]*Customer{}
	for _, o := range orders {
		phone := strings.TrimSpace(o.CustomerPhone)
		if phone == "" {
			continue
		}
		c, ok := byPhone[phone]
		if !ok {
			c = &Customer{Phone: phone}
			byPhone[phone] = c
		}
		c.Orders++
		switch {
		case c.Orders == 1 || o.CreatedAt.After(c.LastOrderAt):
			c.LastOrderAt = o.CreatedAt
			if o.CustomerName != "" {
				c.Name = o.CustomerName
			}
		case c.Name == "":
			c.Name = o.CustomerName
		}
	}

	out := make([]Customer, 0, len(byPhone))
	for _, c := range byPhone {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Orders != out[j].Orders {
			return out[i].Orders > out[j].Orders
		}
		return out[i].Phone < out[j].Phone
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Kitchen computes prep and completion averages, the delayed order count and
// the busiest hour of day in loc.
func Kitchen(orders []Order, now time.Time, loc *time.Location) KitchenStats {
	stats := KitchenStats{PeakHour: -1}

	var (
		prepTotal, completionTotal time.Duration
		prepN, completionN         int
		hours                      [24]int
	)
	for _, o := range orders {
		if o.Status == enum.OrderStatusCancelled {
			continue
		}
		if o.PreparingAt != nil && o.ReadyAt != nil {
			prepTotal += o.ReadyAt.Sub(*o.PreparingAt)
			prepN++
		}
		if o.CompletedAt != nil {
			completionTotal += o.CompletedAt.Sub(o.CreatedAt)
			completionN++
		}
		if o.PreparingAt != nil {
			end := now
			if o.ReadyAt != nil {
				end = *o.ReadyAt
			}
			if end.Sub(*o.PreparingAt) > DelayThreshold {
				stats.DelayedOrders++
			}
		}
		hours[o.CreatedAt.In(loc).Hour()]++
	}

	if prepN > 0 {
		stats.AvgPrepMinutes = minutes(prepTotal / time.Duration(prepN))
	}
	if completionN > 0 {
		stats.AvgCompletionMinutes = minutes(completionTotal / time.Duration(completionN))
	}
	for h, c := range hours {
		if c > stats.PeakHourOrders {
			stats.PeakHour = h
			stats.PeakHourOrders = c
		}
	}
	return stats
}

// Revenue buckets order totals by hour of day for the "today" window and by
// calendar day otherwise. All buckets in the range are present, including
// empty ones.
func Revenue(orders []Order, w Window, now time.Time, loc *time.Location) []Bucket {
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	var buckets []Bucket
	var index func(t time.Time) int
	if w.Hourly() {
		buckets = make([]Bucket, 24)
		for h := range buckets {
			start := today.Add(time.Duration(h) * time.Hour)
			buckets[h] = Bucket{Label: start.Format("15:00"), Start: start, Revenue: decimal.Zero}
		}
		index = func(t time.Time) int {
			t = t.In(loc)
			if t.Before(today) || !t.Before(today.AddDate(0, 0, 1)) {
				return -1
			}
			return t.Hour()
		}
	} else {
		days := w.Days()
		first := today.AddDate(0, 0, -(days - 1))
		buckets = make([]Bucket, days)
		for d := range buckets {
			start := first.AddDate(0, 0, d)
			buckets[d] = Bucket{Label: start.Format("2006-01-02"), Start: start, Revenue: decimal.Zero}
		}
		index = func(t time.Time) int {
			t = t.In(loc)
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
			if day.Before(first) || day.After(today) {
				return -1
			}
			for i := range buckets {
				if buckets[i].Start.Equal(day) {
					return i
				}
			}
			return -1
		}
	}

	for _, o := range orders {
		if o.Status == enum.OrderStatusCancelled {
			continue
		}
		i := index(o.CreatedAt)
		if i < 0 {
			continue
		}
		buckets[i].Orders++
		buckets[i].Revenue = buckets[i].Revenue.Add(o.TotalAmount)
	}
	return buckets
}

func rank(tally map[string]int, n int) []Count {
	out := make([]Count, 0, len(tally))
	for name, c := range tally {
		out = append(out, Count{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func minutes(d time.Duration) float64 {
	return float64(d.Round(time.Second)) / float64(time.Minute)
}
