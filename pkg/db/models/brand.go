package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Brand is an optional manufacturer reference on a shop listing.
type Brand struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name    string    `gorm:"column:name;not null;uniqueIndex:ux_brands_name"`
	Country *string   `gorm:"column:country"`
}

func (b *Brand) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
