package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductType string

const (
	ProductLaptop         ProductType = "Laptop"
	ProductSmartphone     ProductType = "Smartphone"
	ProductTV             ProductType = "TV"
	ProductRefrigerator   ProductType = "Refrigerator"
	ProductWashingMachine ProductType = "WashingMachine"
)

type Product struct {
	ID              uuid.UUID       `gorm:"column:product_id;type:uuid;primaryKey" json:"product_id"`
	SKU             string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"notblank,max=50"`
	Name            string          `gorm:"column:product_name;type:varchar(255);not null" json:"product_name" validate:"notblank"`
	Type            ProductType     `gorm:"column:product_type;type:varchar(30);not null" json:"product_type" validate:"oneof=Laptop Smartphone TV Refrigerator WashingMachine"`
	Price           decimal.Decimal `gorm:"column:product_price;type:numeric(12,2);not null;default:0" json:"product_price"`
	QuantityPresent int             `gorm:"not null;default:0" json:"quantity_present" validate:"min=0"`
	IsActive        bool            `gorm:"not null" json:"is_active"`
	Description     string          `gorm:"column:product_desc;type:text" json:"product_desc"`
	BaseModel
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
