package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sangreguerrer/Netology-Final/pkg/db/models"
	"github.com/sangreguerrer/Netology-Final/pkg/pagination"
)

// ListingView is one shop listing as shown to buyers.
type ListingView struct {
	ID               uuid.UUID         `json:"id"`
	ProductName      string            `json:"product_name"`
	Category         string            `json:"category"`
	Brand            string            `json:"brand,omitempty"`
	Model            string            `json:"model"`
	ShopID           uuid.UUID         `json:"shop_id"`
	Quantity         int               `json:"quantity"`
	Price            decimal.Decimal   `json:"price"`
	RecommendedPrice decimal.Decimal   `json:"recommended_price"`
	Parameters       map[string]string `json:"parameters,omitempty"`
}

// ListingPage is one page of the catalog.
type ListingPage struct {
	Listings   []ListingView `json:"listings"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// Service exposes catalog browsing.
type Service interface {
	Browse(ctx context.Context, filters Filters, params pagination.Params) (*ListingPage, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

type service struct {
	repo Repository
}

// NewService builds the catalog read service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Browse(ctx context.Context, filters Filters, params pagination.Params) (*ListingPage, error) {
	rows, err := s.repo.ListProductInfos(ctx, filters, params)
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	page := &ListingPage{Listings: make([]ListingView, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		page.Listings = append(page.Listings, buildListing(row))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return rows, nil
}

func buildListing(info models.ProductInfo) ListingView {
	view := ListingView{
		ID:               info.ID,
		Model:            info.Model,
		ShopID:           info.ShopID,
		Quantity:         info.Quantity,
		Price:            info.Price,
		RecommendedPrice: info.RecommendedPrice,
	}
	if info.Product != nil {
		view.ProductName = info.Product.Name
		if info.Product.Category != nil {
			view.Category = info.Product.Category.Name
		}
	}
	if info.Brand != nil {
		view.Brand = info.Brand.Name
	}
	if len(info.Parameters) > 0 {
		view.Parameters = make(map[string]string, len(info.Parameters))
		for _, param := range info.Parameters {
			if param.Parameter != nil {
				view.Parameters[param.Parameter.Name] = param.Value
			}
		}
	}
	return view
}
