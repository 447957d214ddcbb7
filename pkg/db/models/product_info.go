package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductInfo is a shop's listing of a catalog product: price, stock and
// external catalog identity. Quantity is the authoritative stock count and is
// mutated only by the inventory ledger (checkout debit) and stock reloads.
type ProductInfo struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ProductID        uuid.UUID          `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_product_info_listing"`
	ShopID           uuid.UUID          `gorm:"column:shop_id;type:uuid;not null;uniqueIndex:ux_product_info_listing;index"`
	BrandID          *uuid.UUID         `gorm:"column:brand_id;type:uuid;uniqueIndex:ux_product_info_listing"`
	ExternalID       int                `gorm:"column:external_id;not null;uniqueIndex:ux_product_info_listing"`
	Model            string             `gorm:"column:model"`
	Quantity         int                `gorm:"column:quantity;not null;default:0"`
	Price            decimal.Decimal    `gorm:"column:price;type:numeric(18,2);not null"`
	RecommendedPrice decimal.Decimal    `gorm:"column:recommended_price;type:numeric(18,2);not null"`
	Product          *Product           `gorm:"foreignKey:ProductID"`
	Brand            *Brand             `gorm:"foreignKey:BrandID"`
	Parameters       []ProductParameter `gorm:"foreignKey:ProductInfoID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *ProductInfo) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
