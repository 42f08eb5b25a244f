package service

import (
	"time"

	"github.com/genypos/api/internal/analytics"
	"github.com/genypos/api/internal/database"
	"github.com/genypos/api/internal/orderstate"
	"github.com/genypos/api/internal/pricing"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// PricingCampaigns converts stored campaigns for the pricing engine.
func PricingCampaigns(cs []database.Campaign) []pricing.Campaign {
	out := make([]pricing.Campaign, len(cs))
	for i, c := range cs {
		out[i] = PricingCampaign(c)
	}
	return out
}

func PricingCampaign(c database.Campaign) pricing.Campaign {
	return pricing.Campaign{
		ID:            c.ID.String(),
		Name:          c.Name,
		Code:          c.Code.String,
		Type:          c.Type,
		DiscountValue: NumericToDecimal(c.DiscountValue),
		TargetType:    c.TargetType,
		TargetID:      c.TargetID.String,
		IsActive:      c.IsActive,
		EndDate:       TimePtr(c.EndDate),
	}
}

// PricingItem identifies a menu item to the pricing engine.
func PricingItem(m database.MenuItem) pricing.Item {
	return pricing.Item{ID: m.ID.String(), Category: m.Category}
}

func stateOrder(o database.Order) orderstate.Order {
	return orderstate.Order{
		Status:      o.Status,
		OrderType:   o.OrderType,
		PreparingAt: TimePtr(o.PreparingAt),
		ReadyAt:     TimePtr(o.ReadyAt),
		CompletedAt: TimePtr(o.CompletedAt),
	}
}

func stateItems(items []database.OrderItem) []orderstate.Item {
	out := make([]orderstate.Item, len(items))
	for i, it := range items {
		out[i] = orderstate.Item{ID: it.ID.String(), PreparationStatus: it.PreparationStatus}
	}
	return out
}

// AnalyticsOrders joins orders with their items for aggregation.
func AnalyticsOrders(orders []database.Order, items []database.OrderItem) []analytics.Order {
	byOrder := make(map[uuid.UUID][]analytics.Item, len(orders))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], analytics.Item{
			MenuItemName: it.MenuItemName,
			Quantity:     int(it.Quantity),
		})
	}
	out := make([]analytics.Order, len(orders))
	for i, o := range orders {
		out[i] = analytics.Order{
			ID:            o.ID.String(),
			CustomerName:  o.CustomerName,
			CustomerPhone: o.CustomerPhone,
			Address:       o.Address,
			Status:        o.Status,
			OrderType:     o.OrderType,
			TotalAmount:   NumericToDecimal(o.TotalAmount),
			CreatedAt:     o.CreatedAt,
			PreparingAt:   TimePtr(o.PreparingAt),
			ReadyAt:       TimePtr(o.ReadyAt),
			CompletedAt:   TimePtr(o.CompletedAt),
			Items:         byOrder[o.ID],
		}
	}
	return out
}

// NumericToDecimal returns zero for NULL or unreadable values.
func NumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func DecimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

func TimePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func Timestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func optText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func optUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}
