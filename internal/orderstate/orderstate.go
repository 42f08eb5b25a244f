// Package orderstate holds the order lifecycle rules shared by every surface
// that mutates orders: status changes, item preparation toggles, cancellation
// and role visibility. Functions are pure; they return updated copies and
// leave persistence to the caller.
package orderstate

import (
	"errors"
	"fmt"
	"time"

	"github.com/genypos/api/internal/enum"
)

var (
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrWrongOrderType   = errors.New("status not available for this order type")
	ErrItemsNotPrepared = errors.New("all items must be prepared first")
	ErrOrderCompleted   = errors.New("order is already completed")
	ErrCannotCancel     = errors.New("completed orders cannot be cancelled")
	ErrItemNotFound     = errors.New("order item not found")
)

// Order is the part of an order the lifecycle rules read and write.
type Order struct {
	Status      string
	OrderType   string
	PreparingAt *time.Time
	ReadyAt     *time.Time
	CompletedAt *time.Time
}

// Item is one order line's preparation state.
type Item struct {
	ID                string
	PreparationStatus string
}

// channelStatuses lists the statuses each order type may hold, in lifecycle order.
var channelStatuses = map[string][]string{
	enum.OrderTypeDelivery: {
		enum.OrderStatusPending, enum.OrderStatusPreparing,
		enum.OrderStatusOutForDelivery, enum.OrderStatusDelivered,
	},
	enum.OrderTypeDineIn: {
		enum.OrderStatusPending, enum.OrderStatusPreparing,
		enum.OrderStatusServed, enum.OrderStatusPaymentCompleted,
	},
	enum.OrderTypeCounter: {
		enum.OrderStatusPending, enum.OrderStatusPreparing,
		enum.OrderStatusServed, enum.OrderStatusPaymentCompleted,
	},
}

// Statuses returns the status vocabulary of an order type, or nil for an
// unknown type.
func Statuses(orderType string) []string {
	s, ok := channelStatuses[orderType]
	if !ok {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// ValidOrderType reports whether t is one of the order channels.
func ValidOrderType(t string) bool {
	_, ok := channelStatuses[t]
	return ok
}

// ValidStatus reports whether s is a storable order status.
func ValidStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending, enum.OrderStatusPreparing,
		enum.OrderStatusOutForDelivery, enum.OrderStatusServed,
		enum.OrderStatusDelivered, enum.OrderStatusPaymentCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether s is a fulfilled end state.
func IsTerminal(s string) bool {
	return s == enum.OrderStatusDelivered || s == enum.OrderStatusPaymentCompleted
}

// requiresReady reports whether entering s needs every item prepared.
func requiresReady(s string) bool {
	switch s {
	case enum.OrderStatusOutForDelivery, enum.OrderStatusServed,
		enum.OrderStatusDelivered, enum.OrderStatusPaymentCompleted:
		return true
	}
	return false
}

// AllPrepared is false for an order without items.
func AllPrepared(items []Item) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if it.PreparationStatus != enum.PrepStatusPrepared {
			return false
		}
	}
	return true
}

// IsReady reports whether the kitchen has finished the order at least once.
func IsReady(o Order) bool {
	return o.ReadyAt != nil
}

func allowedFor(orderType, status string) bool {
	for _, s := range channelStatuses[orderType] {
		if s == status {
			return true
		}
	}
	return false
}

// ApplyStatus moves o to next. Staff may move an order backwards among
// non-terminal states; timestamps are first-reached markers and are never
// cleared. Re-applying the current status is a no-op.
func ApplyStatus(o Order, items []Item, next string, now time.Time) (Order, error) {
	if !ValidStatus(next) {
		return o, fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	if next == o.Status {
		return o, nil
	}
	if IsTerminal(o.Status) {
		return o, ErrOrderCompleted
	}
	if !allowedFor(o.OrderType, next) {
		return o, fmt.Errorf("%w: %s cannot be %s", ErrWrongOrderType, o.OrderType, next)
	}
	if requiresReady(next) && !AllPrepared(items) {
		return o, ErrItemsNotPrepared
	}

	out := o
	out.Status = next
	if next != enum.OrderStatusPending && out.PreparingAt == nil {
		out.PreparingAt = stamp(now)
	}
	if requiresReady(next) && out.ReadyAt == nil {
		out.ReadyAt = stamp(now)
	}
	if completesOrder(next) && out.CompletedAt == nil {
		out.CompletedAt = stamp(now)
	}
	return out, nil
}

// completesOrder reports whether entering s stamps completedAt. Served
// counts as fulfilled for timing even though the bill is still open.
func completesOrder(s string) bool {
	return s == enum.OrderStatusServed || IsTerminal(s)
}

// ApplyItemToggle sets one item's preparation state and derives the order
// side effects: the first prepared item starts a Pending order, and the
// first time every item is prepared marks the order ready.
func ApplyItemToggle(o Order, items []Item, itemID string, prepared bool, now time.Time) (Order, []Item, error) {
	if IsTerminal(o.Status) {
		return o, items, ErrOrderCompleted
	}

	idx := -1
	for i, it := range items {
		if it.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return o, items, ErrItemNotFound
	}

	updated := make([]Item, len(items))
	copy(updated, items)
	if prepared {
		updated[idx].PreparationStatus = enum.PrepStatusPrepared
	} else {
		updated[idx].PreparationStatus = enum.PrepStatusPending
	}

	out := o
	if !prepared {
		return out, updated, nil
	}
	if out.Status == enum.OrderStatusPending {
		out.Status = enum.OrderStatusPreparing
	}
	if out.PreparingAt == nil {
		out.PreparingAt = stamp(now)
	}
	if out.ReadyAt == nil && AllPrepared(updated) {
		out.ReadyAt = stamp(now)
	}
	return out, updated, nil
}

// CanCancel rejects orders that were already fulfilled.
func CanCancel(o Order) error {
	if IsTerminal(o.Status) {
		return ErrCannotCancel
	}
	return nil
}

// VisibleTo reports whether a staff role may see orders of orderType.
// Delivery staff never see table orders; captains only see them.
func VisibleTo(role, orderType string) bool {
	tableOrder := orderType == enum.OrderTypeDineIn || orderType == enum.OrderTypeCounter
	switch role {
	case enum.RoleDelivery:
		return !tableOrder
	case enum.RoleCaptain:
		return tableOrder
	}
	return true
}

// VisibleOrderTypes is the query form of VisibleTo. A nil result means no
// restriction.
func VisibleOrderTypes(role string) []string {
	switch role {
	case enum.RoleDelivery:
		return []string{enum.OrderTypeDelivery}
	case enum.RoleCaptain:
		return []string{enum.OrderTypeDineIn, enum.OrderTypeCounter}
	}
	return nil
}

func stamp(now time.Time) *time.Time {
	t := now
	return &t
}
