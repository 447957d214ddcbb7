package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sangreguerrer/Netology-Final/pkg/db/models"
	"github.com/sangreguerrer/Netology-Final/pkg/pagination"
)

// Service exposes order history to buyers and partner shops.
type Service interface {
	History(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	PartnerOrders(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*OrderList, error)
}

type service struct {
	repo Repository
}

// NewService builds the orders read service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	return &service{repo: repo}, nil
}

// History lists the caller's placed orders, newest first.
func (s *service) History(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	rows, err := s.repo.ListUserOrders(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return buildList(rows, params, nil), nil
}

// PartnerOrders lists placed orders touching the shop's listings. Each order
// is rendered with only the shop's own lines, and totals cover those lines.
func (s *service) PartnerOrders(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*OrderList, error) {
	rows, err := s.repo.ListShopOrders(ctx, shopID, params)
	if err != nil {
		return nil, fmt.Errorf("listing partner orders: %w", err)
	}
	return buildList(rows, params, &shopID), nil
}

func buildList(rows []models.Order, params pagination.Params, shopFilter *uuid.UUID) *OrderList {
	limit := pagination.NormalizeLimit(params.Limit)
	list := &OrderList{Orders: make([]OrderView, 0, len(rows))}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		list.Orders = append(list.Orders, buildView(row, shopFilter))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list
}

func buildView(order models.Order, shopFilter *uuid.UUID) OrderView {
	view := OrderView{
		ID:        order.ID,
		State:     order.State,
		CreatedAt: order.CreatedAt,
		Items:     make([]LineView, 0, len(order.Items)),
		Total:     decimal.Zero,
	}
	if order.Contact != nil {
		view.Contact = &ContactView{
			City:      order.Contact.City,
			Street:    order.Contact.Street,
			House:     order.Contact.House,
			Apartment: order.Contact.Apartment,
			Phone:     order.Contact.Phone,
		}
	}
	for _, item := range order.Items {
		if item.ProductInfo == nil {
			continue
		}
		if shopFilter != nil && item.ProductInfo.ShopID != *shopFilter {
			continue
		}
		line := LineView{
			ProductInfoID: item.ProductInfoID,
			Model:         item.ProductInfo.Model,
			Quantity:      item.Quantity,
			Price:         item.ProductInfo.Price,
			LineTotal:     item.ProductInfo.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
		if item.ProductInfo.Product != nil {
			line.ProductName = item.ProductInfo.Product.Name
		}
		view.Items = append(view.Items, line)
		view.Total = view.Total.Add(line.LineTotal)
	}
	return view
}
