package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sangreguerrer/Netology-Final/pkg/enums"
)

// LineView is one order line joined with its listing.
type LineView struct {
	ProductInfoID uuid.UUID       `json:"product_info_id"`
	ProductName   string          `json:"product_name"`
	Model         string          `json:"model"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	LineTotal     decimal.Decimal `json:"line_total"`
}

// ContactView is the delivery address snapshot rendered with an order.
type ContactView struct {
	City      string `json:"city"`
	Street    string `json:"street"`
	House     string `json:"house"`
	Apartment string `json:"apartment"`
	Phone     string `json:"phone"`
}

// OrderView is a placed order with its computed total.
type OrderView struct {
	ID        uuid.UUID        `json:"id"`
	State     enums.OrderState `json:"state"`
	CreatedAt time.Time        `json:"created_at"`
	Contact   *ContactView     `json:"contact,omitempty"`
	Items     []LineView       `json:"items"`
	Total     decimal.Decimal  `json:"total"`
}

// OrderList is one page of order history.
type OrderList struct {
	Orders     []OrderView `json:"orders"`
	NextCursor string      `json:"next_cursor,omitempty"`
}
