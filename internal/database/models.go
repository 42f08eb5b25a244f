package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type AppSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Campaign struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	Code          pgtype.Text        `json:"code"`
	Type          string             `json:"type"`
	DiscountValue pgtype.Numeric     `json:"discount_value"`
	TargetType    string             `json:"target_type"`
	TargetID      pgtype.Text        `json:"target_id"`
	IsActive      bool               `json:"is_active"`
	EndDate       pgtype.Timestamptz `json:"end_date"`
	CreatedAt     time.Time          `json:"created_at"`
}

type MenuCategory struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type MenuItem struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	BasePrice   string      `json:"base_price"`
	Tag         pgtype.Text `json:"tag"`
	ImageUrl    string      `json:"image_url"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type MenuVariant struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Price      string    `json:"price"`
}

type Order struct {
	ID                uuid.UUID          `json:"id"`
	CustomerName      string             `json:"customer_name"`
	CustomerPhone     string             `json:"customer_phone"`
	Address           string             `json:"address"`
	GpsLocation       pgtype.Text        `json:"gps_location"`
	TotalAmount       pgtype.Numeric     `json:"total_amount"`
	DiscountAmount    pgtype.Numeric     `json:"discount_amount"`
	CouponCode        pgtype.Text        `json:"coupon_code"`
	Status            string             `json:"status"`
	OrderType         string             `json:"order_type"`
	TableID           pgtype.UUID        `json:"table_id"`
	TableNumber       pgtype.Int4        `json:"table_number"`
	Notes             string             `json:"notes"`
	Priority          string             `json:"priority"`
	AssignedStaffID   pgtype.UUID        `json:"assigned_staff_id"`
	ReceivedByStaffID pgtype.UUID        `json:"received_by_staff_id"`
	CreatedAt         time.Time          `json:"created_at"`
	PreparingAt       pgtype.Timestamptz `json:"preparing_at"`
	ReadyAt           pgtype.Timestamptz `json:"ready_at"`
	CompletedAt       pgtype.Timestamptz `json:"completed_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

type OrderItem struct {
	ID                uuid.UUID      `json:"id"`
	OrderID           uuid.UUID      `json:"order_id"`
	MenuItemName      string         `json:"menu_item_name"`
	VariantName       pgtype.Text    `json:"variant_name"`
	Price             pgtype.Numeric `json:"price"`
	Quantity          int32          `json:"quantity"`
	Subtotal          pgtype.Numeric `json:"subtotal"`
	PreparationStatus string         `json:"preparation_status"`
}

type Reservation struct {
	ID              uuid.UUID   `json:"id"`
	CustomerName    string      `json:"customer_name"`
	CustomerPhone   string      `json:"customer_phone"`
	GuestCount      int32       `json:"guest_count"`
	ReservationDate pgtype.Date `json:"reservation_date"`
	ReservationTime string      `json:"reservation_time"`
	Status          string      `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
}

type RestaurantTable struct {
	ID          uuid.UUID `json:"id"`
	TableNumber int32     `json:"table_number"`
	Capacity    int32     `json:"capacity"`
	Status      string    `json:"status"`
}

type Staff struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
}

type StaffActivity struct {
	ID        uuid.UUID   `json:"id"`
	StaffID   pgtype.UUID `json:"staff_id"`
	ActorRole string      `json:"actor_role"`
	Action    string      `json:"action"`
	OrderID   pgtype.UUID `json:"order_id"`
	Details   string      `json:"details"`
	CreatedAt time.Time   `json:"created_at"`
}
