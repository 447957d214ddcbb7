package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderItem is a single order line. A listing appears at most once per order.
type OrderItem struct {
	ID            uuid.UUID    `gorm:"column:id;type:uuid;primaryKey"`
	OrderID       uuid.UUID    `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_order_items_line"`
	ProductInfoID uuid.UUID    `gorm:"column:product_info_id;type:uuid;not null;uniqueIndex:ux_order_items_line"`
	Quantity      int          `gorm:"column:quantity;not null"`
	ProductInfo   *ProductInfo `gorm:"foreignKey:ProductInfoID"`
	CreatedAt     time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
