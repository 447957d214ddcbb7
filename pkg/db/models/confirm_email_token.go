package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConfirmEmailToken holds a pending email confirmation key for a new account.
type ConfirmEmailToken struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Key       string    `gorm:"column:key;not null;uniqueIndex:ux_confirm_email_tokens_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (t *ConfirmEmailToken) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
