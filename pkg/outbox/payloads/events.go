package payloads

import "github.com/google/uuid"

// OrderPlacedEvent notifies the dispatcher that a basket became an order.
type OrderPlacedEvent struct {
	OrderID uuid.UUID `json:"orderId"`
	UserID  uuid.UUID `json:"userId"`
}

// LowStockEvent flags a listing whose post-debit quantity fell below the
// low-stock threshold.
type LowStockEvent struct {
	ProductInfoID uuid.UUID `json:"productInfoId"`
	ShopID        uuid.UUID `json:"shopId"`
	Remaining     int       `json:"remaining"`
}

// UserRegisteredEvent carries the confirmation key for a fresh account.
type UserRegisteredEvent struct {
	UserID     uuid.UUID `json:"userId"`
	Email      string    `json:"email"`
	ConfirmKey string    `json:"confirmKey"`
}
