package basket

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangreguerrer/Netology-Final/pkg/db/models"
)

// Repository defines persistence operations for basket orders and lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindBasket(ctx context.Context, userID uuid.UUID) (*models.Order, error)
	FindBasketWithItems(ctx context.Context, userID uuid.UUID) (*models.Order, error)
	CreateBasket(ctx context.Context, userID uuid.UUID) (*models.Order, error)
	FindProductInfo(ctx context.Context, id uuid.UUID) (*models.ProductInfo, error)
	FindLine(ctx context.Context, orderID, productInfoID uuid.UUID) (*models.OrderItem, error)
	CreateLine(ctx context.Context, line *models.OrderItem) error
	UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	DeleteLines(ctx context.Context, orderID uuid.UUID, lineIDs []uuid.UUID) (int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
