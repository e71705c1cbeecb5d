package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderConfirmed OrderStatus = "Confirmed"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled}

func (s OrderStatus) Valid() bool {
	for _, st := range OrderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Terminal statuses accept no further transition.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentRefunded PaymentStatus = "Refunded"
)

type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "Credit Card"
	PaymentDebitCard      PaymentMethod = "Debit Card"
	PaymentUPI            PaymentMethod = "UPI"
	PaymentNetBanking     PaymentMethod = "NetBanking"
	PaymentCashOnDelivery PaymentMethod = "CashOnDelivery"
)

// LineItem is a frozen snapshot of a product at order time.
type LineItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	ProductType ProductType     `json:"product_type"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

func (l *LineItem) Recalculate() {
	l.LineTotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	OrderID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"order_id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	UserName        string          `gorm:"type:varchar(100);not null" json:"user_name"`
	IsSystemAccount bool            `gorm:"not null;default:false;index" json:"-"`
	LineItems       []LineItem      `gorm:"type:jsonb;serializer:json;not null" json:"line_items"`
	TotalQuantity   int             `gorm:"not null" json:"total_quantity"`
	TotalPrice      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_price"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null" json:"payment_status"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(30);not null" json:"payment_method"`
	ShippingAddress string          `gorm:"type:text;not null" json:"shipping_address"`

	CreatedAt   time.Time  `gorm:"autoCreateTime:false;not null" json:"created_at"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CancellationReason string `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CancelledBy        string `gorm:"type:varchar(255)" json:"cancelled_by,omitempty"`

	// Revision is bumped on every write and compared on update.
	Revision int64 `gorm:"not null;default:0" json:"revision"`
}

// Recalculate derives line totals and order totals from the line items.
func (o *Order) Recalculate() {
	o.TotalQuantity = 0
	o.TotalPrice = decimal.Zero
	for i := range o.LineItems {
		o.LineItems[i].Recalculate()
		o.TotalQuantity += o.LineItems[i].Quantity
		o.TotalPrice = o.TotalPrice.Add(o.LineItems[i].LineTotal)
	}
}

// Line returns the line item for productID, or nil.
func (o *Order) Line(productID uuid.UUID) *LineItem {
	for i := range o.LineItems {
		if o.LineItems[i].ProductID == productID {
			return &o.LineItems[i]
		}
	}
	return nil
}

