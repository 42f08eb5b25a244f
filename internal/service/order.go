package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/genypos/api/internal/database"
	"github.com/genypos/api/internal/enum"
	"github.com/genypos/api/internal/events"
	"github.com/genypos/api/internal/orderstate"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

// Errors returned by the order service.
var (
	ErrEmptyItems         = errors.New("items are required")
	ErrInvalidOrderType   = errors.New("invalid order_type")
	ErrInvalidQuantity    = errors.New("quantity must be > 0")
	ErrInvalidMenuItemID  = errors.New("invalid menu_item_id")
	ErrMenuItemNotFound   = errors.New("menu item not found")
	ErrInvalidVariantID   = errors.New("invalid variant_id")
	ErrVariantNotFound    = errors.New("variant not found for menu item")
	ErrInvalidPriority    = errors.New("invalid priority")
	ErrAddressRequired    = errors.New("address is required for delivery orders")
	ErrInvalidTableID     = errors.New("invalid table_id")
	ErrTableNotFound      = errors.New("table not found")
	ErrInvalidStaffID     = errors.New("invalid assigned_staff_id")
	ErrOrderNotFound      = errors.New("order not found")
	ErrTableForDineInOnly = errors.New("tables can only be attached to dine-in orders")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods the order workflow needs.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	QuoteStore
	GetTable(ctx context.Context, id uuid.UUID) (database.RestaurantTable, error)
	SetTableStatus(ctx context.Context, arg database.SetTableStatusParams) (database.RestaurantTable, error)
	ResetAllTables(ctx context.Context) (int64, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	UpdateOrderItemPreparation(ctx context.Context, arg database.UpdateOrderItemPreparationParams) (database.OrderItem, error)
	TouchOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	CreateStaffActivity(ctx context.Context, arg database.CreateStaffActivityParams) (database.StaffActivity, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// Actor is whoever performs a write. StaffID is uuid.Nil for console roles,
// which authenticate by passphrase rather than a staff account.
type Actor struct {
	StaffID uuid.UUID
	Role    string
}

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	CustomerName    string
	CustomerPhone   string
	Address         string
	GpsLocation     string
	OrderType       string
	TableID         string
	Notes           string
	Priority        string
	CouponCode      string
	AssignedStaffID string
	Items           []CartLine
	// Actor is nil for storefront checkout.
	Actor *Actor
}

// OrderDetail is an order with its items.
type OrderDetail struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService runs every order mutation inside one transaction and
// announces the change once committed.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
	pub      events.Publisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore, pub events.Publisher, logger *zap.Logger) *OrderService {
	if pub == nil {
		pub = events.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{pool: pool, newStore: newStore, pub: pub, logger: logger, now: time.Now}
}

// CreateOrder prices the cart, then inserts the order, its items, the table
// occupancy and the activity record atomically.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderDetail, error) {
	if !orderstate.ValidOrderType(req.OrderType) {
		return nil, ErrInvalidOrderType
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	priority := req.Priority
	switch priority {
	case "":
		priority = enum.PriorityNormal
	case enum.PriorityNormal, enum.PriorityRush:
	default:
		return nil, ErrInvalidPriority
	}
	if req.OrderType == enum.OrderTypeDelivery && strings.TrimSpace(req.Address) == "" {
		return nil, ErrAddressRequired
	}

	var tableID uuid.UUID
	if req.TableID != "" {
		if req.OrderType != enum.OrderTypeDineIn {
			return nil, ErrTableForDineInOnly
		}
		id, err := uuid.Parse(req.TableID)
		if err != nil {
			return nil, ErrInvalidTableID
		}
		tableID = id
	}
	var assigned uuid.UUID
	if req.AssignedStaffID != "" {
		id, err := uuid.Parse(req.AssignedStaffID)
		if err != nil {
			return nil, ErrInvalidStaffID
		}
		assigned = id
	}

	now := s.now()

	// --- Begin transaction ---
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	quote, err := quoteCart(ctx, store, req.Items, strings.TrimSpace(req.CouponCode), now)
	if err != nil {
		return nil, err
	}

	// --- Table ---
	tableNumber := pgtype.Int4{}
	if tableID != uuid.Nil {
		table, err := store.GetTable(ctx, tableID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrTableNotFound
			}
			return nil, fmt.Errorf("get table: %w", err)
		}
		if table.Status == enum.TableStatusOccupied {
			s.logger.Warn("table already occupied", zap.Int32("table_number", table.TableNumber))
		}
		tableNumber = pgtype.Int4{Int32: table.TableNumber, Valid: true}
		if _, err := store.SetTableStatus(ctx, database.SetTableStatusParams{
			ID:     tableID,
			Status: enum.TableStatusOccupied,
		}); err != nil {
			return nil, fmt.Errorf("occupy table: %w", err)
		}
	}

	receivedBy := uuid.Nil
	if req.Actor != nil {
		receivedBy = req.Actor.StaffID
	}

	// --- Insert order ---
	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		CustomerName:      strings.TrimSpace(req.CustomerName),
		CustomerPhone:     strings.TrimSpace(req.CustomerPhone),
		Address:           strings.TrimSpace(req.Address),
		GpsLocation:       optText(req.GpsLocation),
		TotalAmount:       DecimalToNumeric(quote.Total),
		DiscountAmount:    DecimalToNumeric(quote.Discount()),
		CouponCode:        optText(quote.CouponCode),
		OrderType:         req.OrderType,
		TableID:           optUUID(tableID),
		TableNumber:       tableNumber,
		Notes:             req.Notes,
		Priority:          priority,
		AssignedStaffID:   optUUID(assigned),
		ReceivedByStaffID: optUUID(receivedBy),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// --- Insert items ---
	items := make([]database.OrderItem, 0, len(quote.Lines))
	for _, l := range quote.Lines {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:      order.ID,
			MenuItemName: l.Name,
			VariantName:  optText(l.VariantName),
			Price:        DecimalToNumeric(l.UnitPrice),
			Quantity:     l.Quantity,
			Subtotal:     DecimalToNumeric(l.Subtotal),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	if req.Actor != nil {
		if err := s.record(ctx, store, *req.Actor, order.ID, "Created order",
			fmt.Sprintf("%s order, %d items, total %s", order.OrderType, len(items), quote.Total.StringFixed(2))); err != nil {
			return nil, err
		}
	}

	// --- Commit ---
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.publish(ctx, enum.EventOrderCreated, order, "")
	return &OrderDetail{Order: order, Items: items}, nil
}

// UpdateStatus moves an order to status. An actor that cannot see the order
// gets ErrOrderNotFound. Reaching Payment Completed frees the order's table.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string, actor Actor) (*OrderDetail, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, items, err := s.loadForUpdate(ctx, store, orderID, actor)
	if err != nil {
		return nil, err
	}

	next, err := orderstate.ApplyStatus(stateOrder(order), stateItems(items), status, s.now())
	if err != nil {
		return nil, err
	}
	if next.Status == order.Status {
		return &OrderDetail{Order: order, Items: items}, nil
	}

	updated, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:          order.ID,
		Status:      next.Status,
		PreparingAt: Timestamptz(next.PreparingAt),
		ReadyAt:     Timestamptz(next.ReadyAt),
		CompletedAt: Timestamptz(next.CompletedAt),
	})
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if next.Status == enum.OrderStatusPaymentCompleted && order.TableID.Valid {
		if _, err := store.SetTableStatus(ctx, database.SetTableStatusParams{
			ID:     uuid.UUID(order.TableID.Bytes),
			Status: enum.TableStatusAvailable,
		}); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("free table: %w", err)
		}
	}

	if err := s.record(ctx, store, actor, order.ID, "Updated status",
		fmt.Sprintf("%s -> %s", order.Status, next.Status)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.publish(ctx, enum.EventOrderUpdated, updated, "")
	return &OrderDetail{Order: updated, Items: items}, nil
}

// SetItemPrepared toggles one item and persists the order timestamps and
// status it implies.
func (s *OrderService) SetItemPrepared(ctx context.Context, orderID, itemID uuid.UUID, prepared bool, actor Actor) (*OrderDetail, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, items, err := s.loadForUpdate(ctx, store, orderID, actor)
	if err != nil {
		return nil, err
	}

	before := stateOrder(order)
	next, nextItems, err := orderstate.ApplyItemToggle(before, stateItems(items), itemID.String(), prepared, s.now())
	if err != nil {
		return nil, err
	}

	prepStatus := enum.PrepStatusPending
	if prepared {
		prepStatus = enum.PrepStatusPrepared
	}
	item, err := store.UpdateOrderItemPreparation(ctx, database.UpdateOrderItemPreparationParams{
		ID:                itemID,
		PreparationStatus: prepStatus,
	})
	if err != nil {
		return nil, fmt.Errorf("update item preparation: %w", err)
	}
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
		}
	}

	if orderChanged(before, next) {
		order, err = store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
			ID:          order.ID,
			Status:      next.Status,
			PreparingAt: Timestamptz(next.PreparingAt),
			ReadyAt:     Timestamptz(next.ReadyAt),
			CompletedAt: Timestamptz(next.CompletedAt),
		})
		if err != nil {
			return nil, fmt.Errorf("update order status: %w", err)
		}
	} else {
		// Pollers read orders by updated_at, so every toggle touches the row.
		order, err = store.TouchOrder(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("touch order: %w", err)
		}
	}

	action := "Marked item prepared"
	if !prepared {
		action = "Marked item pending"
	}
	done := 0
	for _, it := range nextItems {
		if it.PreparationStatus == enum.PrepStatusPrepared {
			done++
		}
	}
	if err := s.record(ctx, store, actor, order.ID, action,
		fmt.Sprintf("%s (%d/%d prepared)", item.MenuItemName, done, len(nextItems))); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.publish(ctx, enum.EventItemUpdated, order, itemID.String())
	return &OrderDetail{Order: order, Items: items}, nil
}

// CancelOrder deletes an unfulfilled order and its items. The activity log
// keeps a JSON snapshot of what was deleted.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID, actor Actor) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, items, err := s.loadForUpdate(ctx, store, orderID, actor)
	if err != nil {
		return err
	}
	if err := orderstate.CanCancel(stateOrder(order)); err != nil {
		return err
	}

	snapshot, err := json.Marshal(OrderDetail{Order: order, Items: items})
	if err != nil {
		return fmt.Errorf("snapshot order: %w", err)
	}

	if _, err := store.DeleteOrder(ctx, order.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("delete order: %w", err)
	}

	if order.TableID.Valid {
		tableID := uuid.UUID(order.TableID.Bytes)
		table, err := store.GetTable(ctx, tableID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return fmt.Errorf("get table: %w", err)
		case table.Status == enum.TableStatusOccupied:
			if _, err := store.SetTableStatus(ctx, database.SetTableStatusParams{
				ID:     tableID,
				Status: enum.TableStatusAvailable,
			}); err != nil {
				return fmt.Errorf("free table: %w", err)
			}
		}
	}

	if err := s.record(ctx, store, actor, order.ID, "Cancelled order", string(snapshot)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	order.Status = enum.OrderStatusCancelled
	s.publish(ctx, enum.EventOrderCancelled, order, "")
	return nil
}

// FreeTable marks a table Available.
func (s *OrderService) FreeTable(ctx context.Context, tableID uuid.UUID, actor Actor) (database.RestaurantTable, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.RestaurantTable{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	table, err := store.SetTableStatus(ctx, database.SetTableStatusParams{
		ID:     tableID,
		Status: enum.TableStatusAvailable,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.RestaurantTable{}, ErrTableNotFound
		}
		return database.RestaurantTable{}, fmt.Errorf("free table: %w", err)
	}
	if err := s.record(ctx, store, actor, uuid.Nil, "Freed table", fmt.Sprintf("Table %d", table.TableNumber)); err != nil {
		return database.RestaurantTable{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return database.RestaurantTable{}, fmt.Errorf("commit tx: %w", err)
	}
	return table, nil
}

// ResetAllTables marks every table Available and returns how many changed.
func (s *OrderService) ResetAllTables(ctx context.Context, actor Actor) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	n, err := store.ResetAllTables(ctx)
	if err != nil {
		return 0, fmt.Errorf("reset tables: %w", err)
	}
	if err := s.record(ctx, store, actor, uuid.Nil, "Reset all tables", fmt.Sprintf("%d tables freed", n)); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return n, nil
}

// --- Helpers ---

func (s *OrderService) loadForUpdate(ctx context.Context, store OrderStore, orderID uuid.UUID, actor Actor) (database.Order, []database.OrderItem, error) {
	order, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, nil, ErrOrderNotFound
		}
		return database.Order{}, nil, fmt.Errorf("get order: %w", err)
	}
	if !orderstate.VisibleTo(actor.Role, order.OrderType) {
		return database.Order{}, nil, ErrOrderNotFound
	}
	items, err := store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return database.Order{}, nil, fmt.Errorf("list order items: %w", err)
	}
	return order, items, nil
}

func (s *OrderService) record(ctx context.Context, store OrderStore, actor Actor, orderID uuid.UUID, action, details string) error {
	_, err := store.CreateStaffActivity(ctx, database.CreateStaffActivityParams{
		StaffID:   optUUID(actor.StaffID),
		ActorRole: actor.Role,
		Action:    action,
		OrderID:   optUUID(orderID),
		Details:   details,
	})
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// publish runs after commit. Delivery failures are logged, not returned.
func (s *OrderService) publish(ctx context.Context, eventType string, o database.Order, itemID string) {
	err := s.pub.Publish(ctx, events.Event{
		Type:      eventType,
		OrderID:   o.ID,
		OrderType: o.OrderType,
		Status:    o.Status,
		ItemID:    itemID,
		At:        s.now(),
	})
	if err != nil {
		s.logger.Error("publish order event",
			zap.String("type", eventType),
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}
}

func orderChanged(a, b orderstate.Order) bool {
	return a.Status != b.Status ||
		!sameTime(a.PreparingAt, b.PreparingAt) ||
		!sameTime(a.ReadyAt, b.ReadyAt) ||
		!sameTime(a.CompletedAt, b.CompletedAt)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
