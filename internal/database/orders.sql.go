// source: orders.sql

package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, customer_name, customer_phone, address, gps_location, total_amount,
    discount_amount, coupon_code, status, order_type, table_id, table_number, notes,
    priority, assigned_staff_id, received_by_staff_id, created_at, preparing_at,
    ready_at, completed_at, updated_at`

const orderItemColumns = `id, order_id, menu_item_name, variant_name, price, quantity, subtotal, preparation_status`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.Address,
		&i.GpsLocation,
		&i.TotalAmount,
		&i.DiscountAmount,
		&i.CouponCode,
		&i.Status,
		&i.OrderType,
		&i.TableID,
		&i.TableNumber,
		&i.Notes,
		&i.Priority,
		&i.AssignedStaffID,
		&i.ReceivedByStaffID,
		&i.CreatedAt,
		&i.PreparingAt,
		&i.ReadyAt,
		&i.CompletedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func scanOrderItem(row interface{ Scan(...any) error }) (OrderItem, error) {
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.MenuItemName,
		&i.VariantName,
		&i.Price,
		&i.Quantity,
		&i.Subtotal,
		&i.PreparationStatus,
	)
	return i, err
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (
    customer_name, customer_phone, address, gps_location, total_amount, discount_amount,
    coupon_code, order_type, table_id, table_number, notes, priority,
    assigned_staff_id, received_by_staff_id
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	CustomerName      string         `json:"customer_name"`
	CustomerPhone     string         `json:"customer_phone"`
	Address           string         `json:"address"`
	GpsLocation       pgtype.Text    `json:"gps_location"`
	TotalAmount       pgtype.Numeric `json:"total_amount"`
	DiscountAmount    pgtype.Numeric `json:"discount_amount"`
	CouponCode        pgtype.Text    `json:"coupon_code"`
	OrderType         string         `json:"order_type"`
	TableID           pgtype.UUID    `json:"table_id"`
	TableNumber       pgtype.Int4    `json:"table_number"`
	Notes             string         `json:"notes"`
	Priority          string         `json:"priority"`
	AssignedStaffID   pgtype.UUID    `json:"assigned_staff_id"`
	ReceivedByStaffID pgtype.UUID    `json:"received_by_staff_id"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.CustomerName,
		arg.CustomerPhone,
		arg.Address,
		arg.GpsLocation,
		arg.TotalAmount,
		arg.DiscountAmount,
		arg.CouponCode,
		arg.OrderType,
		arg.TableID,
		arg.TableNumber,
		arg.Notes,
		arg.Priority,
		arg.AssignedStaffID,
		arg.ReceivedByStaffID,
	)
	return scanOrder(row)
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (order_id, menu_item_name, variant_name, price, quantity, subtotal)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + orderItemColumns

type CreateOrderItemParams struct {
	OrderID      uuid.UUID      `json:"order_id"`
	MenuItemName string         `json:"menu_item_name"`
	VariantName  pgtype.Text    `json:"variant_name"`
	Price        pgtype.Numeric `json:"price"`
	Quantity     int32          `json:"quantity"`
	Subtotal     pgtype.Numeric `json:"subtotal"`
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.MenuItemName,
		arg.VariantName,
		arg.Price,
		arg.Quantity,
		arg.Subtotal,
	)
	return scanOrderItem(row)
}

const deleteOrder = `-- name: DeleteOrder :one
DELETE FROM orders WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteOrder(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteOrder, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + ` FROM orders WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const getOrderForUpdate = `-- name: GetOrderForUpdate :one
SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE
`

// GetOrderForUpdate locks the order row for the rest of the transaction.
func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, id))
}

const getOrderItem = `-- name: GetOrderItem :one
SELECT ` + orderItemColumns + ` FROM order_items WHERE id = $1
`

func (q *Queries) GetOrderItem(ctx context.Context, id uuid.UUID) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, getOrderItem, id))
}

const listOrderItemsByOrder = `-- name: ListOrderItemsByOrder :many
SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY menu_item_name, id
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	return q.listOrderItems(ctx, listOrderItemsByOrder, orderID)
}

const listOrderItemsByOrders = `-- name: ListOrderItemsByOrders :many
SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = ANY($1::uuid[]) ORDER BY order_id, menu_item_name, id
`

func (q *Queries) ListOrderItemsByOrders(ctx context.Context, orderIDs []uuid.UUID) ([]OrderItem, error) {
	return q.listOrderItems(ctx, listOrderItemsByOrders, orderIDs)
}

func (q *Queries) listOrderItems(ctx context.Context, query string, args ...interface{}) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		i, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrders = `-- name: ListOrders :many
SELECT ` + orderColumns + ` FROM orders
WHERE ($1::text IS NULL OR status = $1::text)
  AND (cardinality($2::text[]) = 0 OR order_type = ANY($2::text[]))
  AND (NOT $3::bool OR status NOT IN ('Delivered', 'Payment Completed'))
ORDER BY created_at DESC
LIMIT $4 OFFSET $5
`

type ListOrdersParams struct {
	Status     pgtype.Text `json:"status"`
	OrderTypes []string    `json:"order_types"`
	ActiveOnly bool        `json:"active_only"`
	Limit      int32       `json:"limit"`
	Offset     int32       `json:"offset"`
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	orderTypes := arg.OrderTypes
	if orderTypes == nil {
		orderTypes = []string{}
	}
	return q.listOrders(ctx, listOrders,
		arg.Status,
		orderTypes,
		arg.ActiveOnly,
		arg.Limit,
		arg.Offset,
	)
}

const listOrdersByPhone = `-- name: ListOrdersByPhone :many
SELECT ` + orderColumns + ` FROM orders
WHERE customer_phone = $1
ORDER BY created_at DESC
LIMIT $2
`

func (q *Queries) ListOrdersByPhone(ctx context.Context, phone string, limit int32) ([]Order, error) {
	return q.listOrders(ctx, listOrdersByPhone, phone, limit)
}

const listOrdersSince = `-- name: ListOrdersSince :many
SELECT ` + orderColumns + ` FROM orders
WHERE created_at >= $1
ORDER BY created_at
`

// ListOrdersSince is the full-window scan behind the analytics dashboard.
func (q *Queries) ListOrdersSince(ctx context.Context, since time.Time) ([]Order, error) {
	return q.listOrders(ctx, listOrdersSince, since)
}

const listOrdersUpdatedSince = `-- name: ListOrdersUpdatedSince :many
SELECT ` + orderColumns + ` FROM orders
WHERE updated_at > $1
ORDER BY updated_at
`

func (q *Queries) ListOrdersUpdatedSince(ctx context.Context, since time.Time) ([]Order, error) {
	return q.listOrders(ctx, listOrdersUpdatedSince, since)
}

func (q *Queries) listOrders(ctx context.Context, query string, args ...interface{}) ([]Order, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrderItemPreparation = `-- name: UpdateOrderItemPreparation :one
UPDATE order_items SET preparation_status = $2
WHERE id = $1
RETURNING ` + orderItemColumns

type UpdateOrderItemPreparationParams struct {
	ID                uuid.UUID `json:"id"`
	PreparationStatus string    `json:"preparation_status"`
}

func (q *Queries) UpdateOrderItemPreparation(ctx context.Context, arg UpdateOrderItemPreparationParams) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, updateOrderItemPreparation, arg.ID, arg.PreparationStatus))
}

const touchOrder = `-- name: TouchOrder :one
UPDATE orders SET updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

// TouchOrder bumps updated_at so item-level changes reach change feeds.
func (q *Queries) TouchOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, touchOrder, id))
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders
SET status = $2, preparing_at = $3, ready_at = $4, completed_at = $5, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID          uuid.UUID          `json:"id"`
	Status      string             `json:"status"`
	PreparingAt pgtype.Timestamptz `json:"preparing_at"`
	ReadyAt     pgtype.Timestamptz `json:"ready_at"`
	CompletedAt pgtype.Timestamptz `json:"completed_at"`
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus,
		arg.ID,
		arg.Status,
		arg.PreparingAt,
		arg.ReadyAt,
		arg.CompletedAt,
	)
	return scanOrder(row)
}
