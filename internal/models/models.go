package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus covers the full lifecycle of an order, from the first item
// hitting the table to the bill being settled.
type OrderStatus string

const (
	StatusActive         OrderStatus = "active"
	StatusPreparing      OrderStatus = "preparing"
	StatusReady          OrderStatus = "ready"
	StatusServed         OrderStatus = "served"
	StatusPendingPayment OrderStatus = "pending_payment"
	StatusClosed         OrderStatus = "closed"
	StatusCancelled      OrderStatus = "cancelled"
)

// TableStatus - where a physical table currently stands
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
)

// Channel - where the order came from
type Channel string

const (
	ChannelDineIn     Channel = "dine_in"
	ChannelTakeaway   Channel = "takeaway"
	ChannelDelivery   Channel = "delivery"
	ChannelAggregator Channel = "aggregator"
	ChannelQR         Channel = "qr"
	ChannelOther      Channel = "other"
)

// QRStatus - a QR proposal waits for staff before it ever touches an Order
type QRStatus string

const (
	QRPendingApproval QRStatus = "pending_approval"
	QRApproved        QRStatus = "approved"
	QRRejected        QRStatus = "rejected"
)

// Tenant - one restaurant account. Every other row is scoped to exactly one.
type Tenant struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Name                string    `gorm:"size:100" json:"name"`
	SubscriptionExpires time.Time `json:"subscription_expires"`
	CreatedAt           time.Time `json:"created_at"`
}

// User - The person interacting with the system
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TenantID     uint      `gorm:"index" json:"tenant_id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"` // Never return this in JSON
	DisplayName  string    `gorm:"size:100" json:"display_name"`
	Role         string    `json:"role"` // 'admin', 'manager', 'waiter'
	CreatedAt    time.Time `json:"created_at"`
}

// DiningTable - a physical table. Occupied exactly while it references a
// non-terminal order; the lifecycle engine is the only writer of these fields.
type DiningTable struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	TenantID       uint        `gorm:"index" json:"tenant_id"`
	Number         int         `json:"number"`
	Seats          int         `json:"seats"`
	Status         TableStatus `gorm:"size:20;default:'available'" json:"status"`
	CurrentOrderID *uint       `json:"current_order_id"`
}

// Order - The central entity. All money fields are integers in minor units.
type Order struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	TenantID       uint           `gorm:"index" json:"tenant_id"`
	TableID        uint           `json:"table_id"`
	OrderNumber    int64          `gorm:"index:idx_tenant_number" json:"order_number"` // sequential per tenant
	Channel        Channel        `gorm:"size:20;default:'dine_in'" json:"channel"`
	Status         OrderStatus    `gorm:"size:20;default:'active'" json:"status"`
	CustomerName   string         `gorm:"size:100" json:"customer_name"`
	CustomerMobile string         `gorm:"size:20" json:"customer_mobile"`
	SubTotal       int64          `json:"sub_total"`
	Tax            int64          `json:"tax"`
	Discount       int64          `json:"discount"`
	Total          int64          `json:"total"`
	AmountPaid     int64          `json:"amount_paid"`
	AmountDue      int64          `json:"amount_due"`
	PaymentMethod  string         `gorm:"size:30" json:"payment_method"`
	Items          []OrderItem    `gorm:"foreignKey:OrderID" json:"items"`
	Payments       []Payment      `gorm:"foreignKey:OrderID" json:"payments"`
	Audits         []OrderAudit   `gorm:"foreignKey:OrderID" json:"audits,omitempty"`
	ClosedAt       *time.Time     `json:"closed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// OrderItem - one line on the bill. Name and price are snapshots taken when
// the item was added, so later menu edits never rewrite old bills.
type OrderItem struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	OrderID    uint   `gorm:"index" json:"order_id"`
	Name       string `gorm:"size:100" json:"name"`
	UnitPrice  int64  `json:"unit_price"`
	Quantity   int    `json:"quantity"`
	PrepStatus string `gorm:"size:20" json:"prep_status,omitempty"`
	Modifiers  string `gorm:"size:255" json:"modifiers,omitempty"`
	Notes      string `gorm:"size:255" json:"notes,omitempty"`
}

// Payment - one ledger row. An order may carry several before it closes.
type Payment struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	OrderID uint      `gorm:"index" json:"order_id"`
	Method  string    `gorm:"size:30" json:"method"`
	Amount  int64     `json:"amount"`
	PaidAt  time.Time `json:"paid_at"`
}

// OrderAudit - append-only trail. Nothing in the codebase updates or deletes
// these rows; ordering is by ID.
type OrderAudit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"index" json:"order_id"`
	Action    string    `gorm:"size:40" json:"action"`
	Actor     string    `gorm:"size:100" json:"actor"`
	Detail    string    `gorm:"size:255" json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// QROrder - a customer-submitted proposal. Staff approval is the only bridge
// into a real Order.
type QROrder struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TenantID       uint      `gorm:"index" json:"tenant_id"`
	TableID        uint      `json:"table_id"`
	CustomerName   string    `gorm:"size:100" json:"customer_name"`
	CustomerMobile string    `gorm:"size:20" json:"customer_mobile"`
	ItemsJSON      string    `gorm:"type:text" json:"items_json"`
	Total          int64     `json:"total"`
	Status         QRStatus  `gorm:"size:20;default:'pending_approval'" json:"status"`
	OrderID        *uint     `json:"order_id,omitempty"` // set once approved
	CreatedAt      time.Time `json:"created_at"`
}

// OrderCounter - per-tenant sequence for human-facing order numbers. Bumped
// under a row lock inside the order creation transaction.
type OrderCounter struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	TenantID   uint  `gorm:"uniqueIndex" json:"tenant_id"`
	LastNumber int64 `json:"last_number"`
}
