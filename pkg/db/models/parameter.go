package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Parameter names a product attribute (weight, color, ...).
type Parameter struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name string    `gorm:"column:name;not null;uniqueIndex:ux_parameters_name"`
}

func (p *Parameter) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProductParameter holds a listing-specific attribute value.
type ProductParameter struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ProductInfoID uuid.UUID  `gorm:"column:product_info_id;type:uuid;not null;uniqueIndex:ux_product_parameters"`
	ParameterID   uuid.UUID  `gorm:"column:parameter_id;type:uuid;not null;uniqueIndex:ux_product_parameters"`
	Value         string     `gorm:"column:value;not null"`
	Parameter     *Parameter `gorm:"foreignKey:ParameterID"`
}

func (p *ProductParameter) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
