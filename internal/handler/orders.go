package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/genypos/api/internal/auth"
	"github.com/genypos/api/internal/database"
	"github.com/genypos/api/internal/enum"
	"github.com/genypos/api/internal/middleware"
	"github.com/genypos/api/internal/orderstate"
	"github.com/genypos/api/internal/pricing"
	"github.com/genypos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderDetail, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string, actor service.Actor) (*service.OrderDetail, error)
	SetItemPrepared(ctx context.Context, orderID, itemID uuid.UUID, prepared bool, actor service.Actor) (*service.OrderDetail, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID, actor service.Actor) error
}

// OrderStore defines the database methods needed by order read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrdersUpdatedSince(ctx context.Context, since time.Time) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListOrderItemsByOrders(ctx context.Context, orderIDs []uuid.UUID) ([]database.OrderItem, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	now   func() time.Time
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, now: time.Now}
}

// RegisterPublicRoutes registers storefront checkout. Expected to be
// mounted at /orders without authentication.
func (h *OrderHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/", h.Checkout)
}

// RegisterRoutes registers staff order endpoints. Expected to be mounted
// at /orders behind authentication.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/changes", h.Changes)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.With(middleware.RequireRole(enum.RoleKitchen, enum.RoleAdmin, enum.RoleMG, enum.RoleCaptain)).
		Patch("/{id}/items/{itemId}", h.SetItemPrepared)
	r.With(middleware.RequireRole(enum.RoleAdmin, enum.RoleMG, enum.RoleCaptain)).
		Delete("/{id}", h.Cancel)
}

// RegisterStaffOrderRoutes registers POS and captain order entry.
// Expected to be mounted at /staff-orders behind authentication.
func (h *OrderHandler) RegisterStaffOrderRoutes(r chi.Router) {
	r.With(middleware.RequireRole(enum.RoleCaptain, enum.RoleAdmin, enum.RoleMG)).
		Post("/", h.CreateStaff)
}

// --- Request / Response types ---

type createOrderRequest struct {
	CustomerName    string            `json:"customer_name"`
	CustomerPhone   string            `json:"customer_phone"`
	Address         string            `json:"address"`
	GpsLocation     string            `json:"gps_location"`
	OrderType       string            `json:"order_type" validate:"required,oneof=Delivery Dine-in Counter"`
	TableID         string            `json:"table_id" validate:"omitempty,uuid"`
	Notes           string            `json:"notes"`
	Priority        string            `json:"priority" validate:"omitempty,oneof=Normal Rush"`
	CouponCode      string            `json:"coupon_code"`
	AssignedStaffID string            `json:"assigned_staff_id" validate:"omitempty,uuid"`
	Items           []cartLineRequest `json:"items" validate:"required,min=1,dive"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type setItemPreparedRequest struct {
	Prepared *bool `json:"prepared" validate:"required"`
}

type orderItemResponse struct {
	ID                uuid.UUID `json:"id"`
	MenuItemName      string    `json:"menu_item_name"`
	VariantName       *string   `json:"variant_name"`
	Price             string    `json:"price"`
	Quantity          int32     `json:"quantity"`
	Subtotal          string    `json:"subtotal"`
	PreparationStatus string    `json:"preparation_status"`
}

type orderResponse struct {
	ID                uuid.UUID           `json:"id"`
	CustomerName      string              `json:"customer_name"`
	CustomerPhone     string              `json:"customer_phone"`
	Address           string              `json:"address"`
	GpsLocation       *string             `json:"gps_location"`
	TotalAmount       string              `json:"total_amount"`
	DiscountAmount    string              `json:"discount_amount"`
	CouponCode        *string             `json:"coupon_code"`
	Status            string              `json:"status"`
	OrderType         string              `json:"order_type"`
	TableID           *uuid.UUID          `json:"table_id"`
	TableNumber       *int32              `json:"table_number"`
	Notes             string              `json:"notes"`
	Priority          string              `json:"priority"`
	AssignedStaffID   *uuid.UUID          `json:"assigned_staff_id"`
	ReceivedByStaffID *uuid.UUID          `json:"received_by_staff_id"`
	CreatedAt         time.Time           `json:"created_at"`
	PreparingAt       *time.Time          `json:"preparing_at"`
	ReadyAt           *time.Time          `json:"ready_at"`
	CompletedAt       *time.Time          `json:"completed_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	Ready             bool                `json:"ready"`
	Items             []orderItemResponse `json:"items"`
}

// orderListResponse wraps a list of orders with pagination metadata.
type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// changesResponse carries the orders touched since the requested instant.
// Clients pass ServerTime back as the next since.
type changesResponse struct {
	Orders     []orderResponse `json:"orders"`
	ServerTime time.Time       `json:"server_time"`
}

// --- Handlers ---

// Checkout handles POST /orders from the public storefront.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	// The storefront customer must identify themselves.
	if strings.TrimSpace(req.CustomerName) == "" {
		writeError(w, http.StatusBadRequest, "customer_name is required")
		return
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		writeError(w, http.StatusBadRequest, "customer_phone is required")
		return
	}

	h.create(w, r, req, nil)
}

// CreateStaff handles POST /staff-orders from the POS and captain app. The
// signed-in staff member is recorded as the receiver.
func (h *OrderHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !orderstate.VisibleTo(claims.Role, req.OrderType) {
		writeError(w, http.StatusForbidden, "order type not allowed for this role")
		return
	}

	actor := actorFrom(claims)
	h.create(w, r, req, &actor)
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request, req createOrderRequest, actor *service.Actor) {
	detail, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		Address:         req.Address,
		GpsLocation:     req.GpsLocation,
		OrderType:       req.OrderType,
		TableID:         req.TableID,
		Notes:           req.Notes,
		Priority:        req.Priority,
		CouponCode:      req.CouponCode,
		AssignedStaffID: req.AssignedStaffID,
		Items:           toCartLines(req.Items),
		Actor:           actor,
	})
	if err != nil {
		writeOrderError(w, "create order", err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(detail.Order, detail.Items))
}

// List handles GET /orders. Results are limited to the order types the
// caller's role may see. Filters: status, type, active=true, limit, offset.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	limit, offset := pagination(r, 50, 200)
	q := r.URL.Query()

	params := database.ListOrdersParams{
		OrderTypes: orderstate.VisibleOrderTypes(claims.Role),
		ActiveOnly: q.Get("active") == "true",
		Limit:      int32(limit),
		Offset:     int32(offset),
	}
	if s := q.Get("status"); s != "" {
		if !orderstate.ValidStatus(s) {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		params.Status = pgtype.Text{String: s, Valid: true}
	}
	if s := q.Get("type"); s != "" {
		if !orderstate.ValidOrderType(s) {
			writeError(w, http.StatusBadRequest, "invalid type")
			return
		}
		if !orderstate.VisibleTo(claims.Role, s) {
			writeJSON(w, http.StatusOK, orderListResponse{Orders: []orderResponse{}, Limit: limit, Offset: offset})
			return
		}
		params.OrderTypes = []string{s}
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		writeInternal(w, "list orders", err)
		return
	}

	resp, ok := h.withItems(w, r, orders)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, orderListResponse{Orders: resp, Limit: limit, Offset: offset})
}

// Changes handles GET /orders/changes?since=RFC3339, the polling fallback
// for consoles without a WebSocket.
func (h *OrderHandler) Changes(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	// Taken before the query so nothing committed in between is skipped.
	serverTime := h.now()

	since, err := time.Parse(time.RFC3339Nano, r.URL.Query().Get("since"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "since must be an RFC3339 timestamp")
		return
	}

	orders, err := h.store.ListOrdersUpdatedSince(r.Context(), since)
	if err != nil {
		writeInternal(w, "list orders updated since", err)
		return
	}

	visible := orders[:0:0]
	for _, o := range orders {
		if orderstate.VisibleTo(claims.Role, o.OrderType) {
			visible = append(visible, o)
		}
	}

	resp, ok := h.withItems(w, r, visible)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, changesResponse{Orders: resp, ServerTime: serverTime})
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeInternal(w, "get order", err)
		return
	}
	if !orderstate.VisibleTo(claims.Role, order.OrderType) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		writeInternal(w, "list order items", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order, items))
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req updateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	detail, err := h.svc.UpdateStatus(r.Context(), orderID, req.Status, actorFrom(claims))
	if err != nil {
		writeOrderError(w, "update order status", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(detail.Order, detail.Items))
}

// SetItemPrepared handles PATCH /orders/{id}/items/{itemId}.
func (h *OrderHandler) SetItemPrepared(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	var req setItemPreparedRequest
	if !decodeBody(w, r, &req) {
		return
	}

	detail, err := h.svc.SetItemPrepared(r.Context(), orderID, itemID, *req.Prepared, actorFrom(claims))
	if err != nil {
		writeOrderError(w, "set item prepared", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(detail.Order, detail.Items))
}

// Cancel handles DELETE /orders/{id}. The order is gone afterwards.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	if err := h.svc.CancelOrder(r.Context(), orderID, actorFrom(claims)); err != nil {
		writeOrderError(w, "cancel order", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func actorFrom(claims *auth.Claims) service.Actor {
	return service.Actor{StaffID: claims.StaffID, Role: claims.Role}
}

// withItems loads the items of orders in one query and builds responses.
func (h *OrderHandler) withItems(w http.ResponseWriter, r *http.Request, orders []database.Order) ([]orderResponse, bool) {
	resp := make([]orderResponse, 0, len(orders))
	if len(orders) == 0 {
		return resp, true
	}

	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := h.store.ListOrderItemsByOrders(r.Context(), ids)
	if err != nil {
		writeInternal(w, "list order items", err)
		return nil, false
	}

	byOrder := make(map[uuid.UUID][]database.OrderItem, len(orders))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o, byOrder[o.ID]))
	}
	return resp, true
}

// writeOrderError maps service and lifecycle errors: 400 for bad input,
// 404 for missing orders, items and tables, 409 for lifecycle conflicts.
func writeOrderError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, orderstate.ErrItemNotFound),
		errors.Is(err, service.ErrTableNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orderstate.ErrItemsNotPrepared),
		errors.Is(err, orderstate.ErrOrderCompleted),
		errors.Is(err, orderstate.ErrCannotCancel),
		errors.Is(err, orderstate.ErrWrongOrderType):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, orderstate.ErrInvalidStatus),
		isOrderValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pricing.ErrCouponNotFound),
		errors.Is(err, pricing.ErrCouponExpired),
		errors.Is(err, pricing.ErrCouponInactive),
		errors.Is(err, pricing.ErrCouponNotApplicable),
		isCartValidationError(err):
		writeQuoteError(w, op, err)
	default:
		writeInternal(w, op, err)
	}
}

func isOrderValidationError(err error) bool {
	return errors.Is(err, service.ErrInvalidOrderType) ||
		errors.Is(err, service.ErrInvalidPriority) ||
		errors.Is(err, service.ErrAddressRequired) ||
		errors.Is(err, service.ErrInvalidTableID) ||
		errors.Is(err, service.ErrInvalidStaffID) ||
		errors.Is(err, service.ErrTableForDineInOnly)
}

func toOrderResponse(o database.Order, items []database.OrderItem) orderResponse {
	resp := orderResponse{
		ID:             o.ID,
		CustomerName:   o.CustomerName,
		CustomerPhone:  o.CustomerPhone,
		Address:        o.Address,
		GpsLocation:    textPtr(o.GpsLocation),
		TotalAmount:    numericToString(o.TotalAmount),
		DiscountAmount: numericToString(o.DiscountAmount),
		CouponCode:     textPtr(o.CouponCode),
		Status:         o.Status,
		OrderType:      o.OrderType,
		Notes:          o.Notes,
		Priority:       o.Priority,
		CreatedAt:      o.CreatedAt,
		PreparingAt:    timestamptzPtr(o.PreparingAt),
		ReadyAt:        timestamptzPtr(o.ReadyAt),
		CompletedAt:    timestamptzPtr(o.CompletedAt),
		UpdatedAt:      o.UpdatedAt,
		Ready:          o.ReadyAt.Valid,
		Items:          make([]orderItemResponse, len(items)),
	}
	resp.TableID = uuidPtr(o.TableID)
	resp.AssignedStaffID = uuidPtr(o.AssignedStaffID)
	resp.ReceivedByStaffID = uuidPtr(o.ReceivedByStaffID)
	if o.TableNumber.Valid {
		n := o.TableNumber.Int32
		resp.TableNumber = &n
	}

	for i, it := range items {
		resp.Items[i] = orderItemResponse{
			ID:                it.ID,
			MenuItemName:      it.MenuItemName,
			VariantName:       textPtr(it.VariantName),
			Price:             numericToString(it.Price),
			Quantity:          it.Quantity,
			Subtotal:          numericToString(it.Subtotal),
			PreparationStatus: it.PreparationStatus,
		}
	}
	return resp
}

func uuidPtr(id pgtype.UUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	u := uuid.UUID(id.Bytes)
	return &u
}
