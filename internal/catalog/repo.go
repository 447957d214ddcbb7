package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangreguerrer/Netology-Final/pkg/db/models"
	"github.com/sangreguerrer/Netology-Final/pkg/pagination"
)

// Filters narrows the catalog listing.
type Filters struct {
	ShopID     *uuid.UUID
	CategoryID *uuid.UUID
}

// Repository reads the public catalog.
type Repository interface {
	ListProductInfos(ctx context.Context, filters Filters, params pagination.Params) ([]models.ProductInfo, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ListProductInfos returns listings of shops that currently accept orders,
// joined with their catalog product and attributes.
func (r *repository) ListProductInfos(ctx context.Context, filters Filters, params pagination.Params) ([]models.ProductInfo, error) {
	query := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Category").
		Preload("Brand").
		Preload("Parameters").
		Preload("Parameters.Parameter").
		Joins("JOIN shops ON shops.id = product_infos.shop_id").
		Where("shops.state = ?", true)

	if filters.ShopID != nil {
		query = query.Where("product_infos.shop_id = ?", *filters.ShopID)
	}
	if filters.CategoryID != nil {
		query = query.
			Joins("JOIN products ON products.id = product_infos.product_id").
			Where("products.category_id = ?", *filters.CategoryID)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"product_infos.created_at > ? OR (product_infos.created_at = ? AND product_infos.id > ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.ProductInfo
	err = query.
		Order("product_infos.created_at ASC").
		Order("product_infos.id ASC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}
