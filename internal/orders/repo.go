package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangreguerrer/Netology-Final/pkg/db/models"
	"github.com/sangreguerrer/Netology-Final/pkg/enums"
	"github.com/sangreguerrer/Netology-Final/pkg/pagination"
)

// Repository reads placed orders for buyers and partner shops.
type Repository interface {
	ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, error)
	ListShopOrders(ctx context.Context, shopID uuid.UUID, params pagination.Params) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func placedScope(db *gorm.DB) *gorm.DB {
	return db.Where("orders.state NOT IN ?", []enums.OrderState{
		enums.OrderStateBasket,
		enums.OrderStateCanceled,
	})
}

func applyCursor(db *gorm.DB, params pagination.Params) (*gorm.DB, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		db = db.Where(
			"orders.created_at < ? OR (orders.created_at = ? AND orders.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	return db, nil
}

func (r *repository) ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	query := placedScope(r.db.WithContext(ctx)).
		Preload("Contact").
		Preload("Items").
		Preload("Items.ProductInfo").
		Preload("Items.ProductInfo.Product").
		Where("orders.user_id = ?", userID)
	query, err := applyCursor(query, params)
	if err != nil {
		return nil, err
	}

	var rows []models.Order
	err = query.
		Order("orders.created_at DESC").
		Order("orders.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	return rows, err
}

// ListShopOrders returns placed orders containing at least one of the shop's
// listings. Items are loaded in full; the service trims foreign lines.
func (r *repository) ListShopOrders(ctx context.Context, shopID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	query := placedScope(r.db.WithContext(ctx)).
		Preload("Contact").
		Preload("Items").
		Preload("Items.ProductInfo").
		Preload("Items.ProductInfo.Product").
		Where("orders.id IN (?)",
			r.db.Model(&models.OrderItem{}).
				Select("order_items.order_id").
				Joins("JOIN product_infos ON product_infos.id = order_items.product_info_id").
				Where("product_infos.shop_id = ?", shopID),
		)
	query, err := applyCursor(query, params)
	if err != nil {
		return nil, err
	}

	var rows []models.Order
	err = query.
		Order("orders.created_at DESC").
		Order("orders.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	return rows, err
}
