package basket

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sangreguerrer/Netology-Final/pkg/db/models"
	pkgerrors "github.com/sangreguerrer/Netology-Final/pkg/errors"
	"github.com/sangreguerrer/Netology-Final/pkg/logger"
)

// ItemEntry is one requested basket line change.
type ItemEntry struct {
	ProductInfoID uuid.UUID
	Quantity      int
}

// EntryError reports why a single entry in a batch was rejected. The rest of
// the batch is unaffected.
type EntryError struct {
	Index         int            `json:"index"`
	ProductInfoID uuid.UUID      `json:"product_info_id"`
	Code          pkgerrors.Code `json:"code"`
	Message       string         `json:"message"`
}

// MutationResult summarises a partial-success batch mutation.
type MutationResult struct {
	Applied int          `json:"applied"`
	Errors  []EntryError `json:"errors"`
}

// ItemView is a basket line with its listing joined in.
type ItemView struct {
	LineID        uuid.UUID       `json:"id"`
	ProductInfoID uuid.UUID       `json:"product_info_id"`
	ProductName   string          `json:"product_name"`
	Model         string          `json:"model"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	LineTotal     decimal.Decimal `json:"line_total"`
}

// View is the user's basket with totals computed from live listing prices.
type View struct {
	OrderID uuid.UUID       `json:"order_id"`
	Items   []ItemView      `json:"items"`
	Total   decimal.Decimal `json:"total"`
}

// Service manages the user's single mutable basket.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	AddItems(ctx context.Context, userID uuid.UUID, entries []ItemEntry) (*MutationResult, error)
	UpdateItems(ctx context.Context, userID uuid.UUID, entries []ItemEntry) (*MutationResult, error)
	RemoveItems(ctx context.Context, userID uuid.UUID, rawIDs string) (int64, error)
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService builds the basket service.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

// Get returns the caller's basket, creating an empty one on first touch.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	order, err := s.repo.FindBasketWithItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading basket: %w", err)
	}
	if order == nil {
		if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			created, err := s.getOrCreateBasket(ctx, s.repo.WithTx(tx), userID)
			if err != nil {
				return err
			}
			order = created
			return nil
		}); err != nil {
			return nil, err
		}
	}
	return buildView(order), nil
}

// AddItems appends new lines to the basket. Each entry is validated on its
// own; valid entries are created even when siblings fail. A listing already
// present in the basket is rejected, never merged.
func (s *service) AddItems(ctx context.Context, userID uuid.UUID, entries []ItemEntry) (*MutationResult, error) {
	result := &MutationResult{Errors: []EntryError{}}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.getOrCreateBasket(ctx, repo, userID)
		if err != nil {
			return err
		}

		seen := make(map[uuid.UUID]struct{}, len(entries))
		for i, entry := range entries {
			if entryErr := s.validateAdd(ctx, repo, order.ID, entry, seen); entryErr != nil {
				entryErr.Index = i
				result.Errors = append(result.Errors, *entryErr)
				continue
			}
			seen[entry.ProductInfoID] = struct{}{}
			line := models.OrderItem{
				OrderID:       order.ID,
				ProductInfoID: entry.ProductInfoID,
				Quantity:      entry.Quantity,
			}
			if err := repo.CreateLine(ctx, &line); err != nil {
				return fmt.Errorf("creating basket line: %w", err)
			}
			result.Applied++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) validateAdd(ctx context.Context, repo Repository, orderID uuid.UUID, entry ItemEntry, seen map[uuid.UUID]struct{}) *EntryError {
	if entry.Quantity <= 0 {
		return &EntryError{
			ProductInfoID: entry.ProductInfoID,
			Code:          pkgerrors.CodeValidation,
			Message:       "quantity must be positive",
		}
	}
	if _, dup := seen[entry.ProductInfoID]; dup {
		return &EntryError{
			ProductInfoID: entry.ProductInfoID,
			Code:          pkgerrors.CodeConflict,
			Message:       "listing repeated in request",
		}
	}
	info, err := repo.FindProductInfo(ctx, entry.ProductInfoID)
	if err != nil {
		return &EntryError{
			ProductInfoID: entry.ProductInfoID,
			Code:          pkgerrors.CodeInternal,
			Message:       "failed to load listing",
		}
	}
	if info == nil {
		return &EntryError{
			ProductInfoID: entry.ProductInfoID,
			Code:          pkgerrors.CodeNotFound,
			Message:       "product listing not found",
		}
	}
	if entry.Quantity > info.Quantity {
		return &EntryError{
			ProductInfoID: entry.ProductInfoID,
			Code:          pkgerrors.CodeInsufficientStock,
			Message:       fmt.Sprintf("requested %d, only %d in stock", entry.Quantity, info.Quantity),
		}
	}
	existing, err := repo.FindLine(ctx, orderID, entry.ProductInfoID)
	if err != nil {
		return &EntryError{
			ProductInfoID: entry.ProductInfoID,
			Code:          pkgerrors.CodeInternal,
			Message:       "failed to load basket line",
		}
	}
	if existing != nil {
		return &EntryError{
			ProductInfoID: entry.ProductInfoID,
			Code:          pkgerrors.CodeConflict,
			Message:       "listing already in basket",
		}
	}
	return nil
}

// UpdateItems replaces quantities on existing lines, addressed by listing id.
// Lines that do not exist in the caller's basket are reported per entry.
func (s *service) UpdateItems(ctx context.Context, userID uuid.UUID, entries []ItemEntry) (*MutationResult, error) {
	result := &MutationResult{Errors: []EntryError{}}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindBasket(ctx, userID)
		if err != nil {
			return fmt.Errorf("loading basket: %w", err)
		}
		if order == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
		}

		for i, entry := range entries {
			if entry.Quantity <= 0 {
				result.Errors = append(result.Errors, EntryError{
					Index:         i,
					ProductInfoID: entry.ProductInfoID,
					Code:          pkgerrors.CodeValidation,
					Message:       "quantity must be positive",
				})
				continue
			}
			line, err := repo.FindLine(ctx, order.ID, entry.ProductInfoID)
			if err != nil {
				return fmt.Errorf("loading basket line: %w", err)
			}
			if line == nil {
				result.Errors = append(result.Errors, EntryError{
					Index:         i,
					ProductInfoID: entry.ProductInfoID,
					Code:          pkgerrors.CodeNotFound,
					Message:       "listing not in basket",
				})
				continue
			}
			info, err := repo.FindProductInfo(ctx, entry.ProductInfoID)
			if err != nil {
				return fmt.Errorf("loading listing: %w", err)
			}
			if info == nil || entry.Quantity > info.Quantity {
				available := 0
				if info != nil {
					available = info.Quantity
				}
				result.Errors = append(result.Errors, EntryError{
					Index:         i,
					ProductInfoID: entry.ProductInfoID,
					Code:          pkgerrors.CodeInsufficientStock,
					Message:       fmt.Sprintf("requested %d, only %d in stock", entry.Quantity, available),
				})
				continue
			}
			if err := repo.UpdateLineQuantity(ctx, line.ID, entry.Quantity); err != nil {
				return fmt.Errorf("updating basket line: %w", err)
			}
			result.Applied++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveItems deletes the named lines from the caller's basket. rawIDs is a
// comma separated list of line ids; tokens that do not parse or do not match
// a line of this basket are ignored.
func (s *service) RemoveItems(ctx context.Context, userID uuid.UUID, rawIDs string) (int64, error) {
	ids := parseIDList(rawIDs)
	if len(ids) == 0 {
		return 0, nil
	}

	order, err := s.repo.FindBasket(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("loading basket: %w", err)
	}
	if order == nil {
		return 0, nil
	}

	deleted, err := s.repo.DeleteLines(ctx, order.ID, ids)
	if err != nil {
		return 0, fmt.Errorf("deleting basket lines: %w", err)
	}
	if s.logg != nil && deleted > 0 {
		logCtx := s.logg.WithFields(ctx, map[string]any{"order_id": order.ID.String(), "deleted": deleted})
		s.logg.Info(logCtx, "basket lines removed")
	}
	return deleted, nil
}

func (s *service) getOrCreateBasket(ctx context.Context, repo Repository, userID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindBasket(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading basket: %w", err)
	}
	if order != nil {
		return order, nil
	}
	created, err := repo.CreateBasket(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("creating basket: %w", err)
	}
	return created, nil
}

func parseIDList(raw string) []uuid.UUID {
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func buildView(order *models.Order) *View {
	view := &View{
		OrderID: order.ID,
		Items:   make([]ItemView, 0, len(order.Items)),
		Total:   decimal.Zero,
	}
	for _, item := range order.Items {
		entry := ItemView{
			LineID:        item.ID,
			ProductInfoID: item.ProductInfoID,
			Quantity:      item.Quantity,
		}
		if item.ProductInfo != nil {
			entry.Price = item.ProductInfo.Price
			entry.Model = item.ProductInfo.Model
			entry.LineTotal = item.ProductInfo.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			if item.ProductInfo.Product != nil {
				entry.ProductName = item.ProductInfo.Product.Name
			}
			view.Total = view.Total.Add(entry.LineTotal)
		}
		view.Items = append(view.Items, entry)
	}
	return view
}
