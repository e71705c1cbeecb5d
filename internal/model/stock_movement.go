package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// Movement reasons.
const (
	ReasonOrderReserved   = "order_reserved"
	ReasonOrderReleased   = "order_released"
	ReasonOrderAdjusted   = "order_adjusted"
	ReasonAdminAdjustment = "admin_adjustment"
)

// StockMovement is the ledger row written alongside every stock change.
type StockMovement struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID    `gorm:"type:uuid;not null;index" json:"product_id"`
	SKU       string       `gorm:"type:varchar(50);not null" json:"sku"`
	OrderID   *uuid.UUID   `gorm:"type:uuid;index" json:"order_id,omitempty"`
	Type      MovementType `gorm:"type:varchar(10);not null" json:"type"`
	Quantity  int          `gorm:"not null" json:"quantity"`
	Reason    string       `gorm:"type:varchar(30);not null" json:"reason"`
	BaseModel
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
