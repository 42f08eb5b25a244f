package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending          = "Pending"
	OrderStatusPreparing        = "Preparing"
	OrderStatusOutForDelivery   = "Out for Delivery"
	OrderStatusServed           = "Served"
	OrderStatusDelivered        = "Delivered"
	OrderStatusPaymentCompleted = "Payment Completed"
	// OrderStatusCancelled is never stored: cancelling deletes the row.
	// It only appears in change events and analytics filters.
	OrderStatusCancelled = "Cancelled"
)

const (
	PrepStatusPending  = "Pending"
	PrepStatusPrepared = "Prepared"
)

const (
	TableStatusAvailable = "Available"
	TableStatusOccupied  = "Occupied"
	TableStatusReserved  = "Reserved"
)

const (
	ReservationStatusPending   = "Pending"
	ReservationStatusConfirmed = "Confirmed"
	ReservationStatusCancelled = "Cancelled"
)

// ── Group B: Channels and roles (CHECK constrained in DB) ──

const (
	OrderTypeDelivery = "Delivery"
	OrderTypeDineIn   = "Dine-in"
	OrderTypeCounter  = "Counter"
)

const (
	PriorityNormal = "Normal"
	PriorityRush   = "Rush"
)

// Staff accounts carry one of these roles.
const (
	RoleCaptain  = "captain"
	RoleDelivery = "delivery"
)

// Console roles are granted by passphrase, not by a staff account.
const (
	RoleAdmin   = "admin"
	RoleKitchen = "kitchen"
	RoleMG      = "mg"
)

const (
	CampaignTypePercentage = "percentage"
	CampaignTypeFixed      = "fixed"
)

const (
	TargetAll      = "all"
	TargetCategory = "category"
	TargetItem     = "item"
)

// ── Group C: App settings keys (no DB constraint) ──

const (
	SettingAdminPassphrase   = "admin_passphrase"
	SettingKitchenPassphrase = "kitchen_passphrase"
	SettingMGPassphrase      = "mg_passphrase"

	SettingTopItemsDays = "analytics_top_items_days"
	SettingHotZonesDays = "analytics_hot_zones_days"
	SettingLoyalDays    = "analytics_loyal_days"
	SettingKitchenDays  = "analytics_kitchen_days"
)

// ── Group D: Change events ──

const (
	EventOrderCreated   = "order.created"
	EventOrderUpdated   = "order.updated"
	EventOrderCancelled = "order.cancelled"
	EventItemUpdated    = "order_item.updated"
)
