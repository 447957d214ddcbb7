package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/sangreguerrer/Netology-Final/pkg/errors"
	"github.com/sangreguerrer/Netology-Final/pkg/enums"
	"github.com/sangreguerrer/Netology-Final/pkg/logger"
	"github.com/sangreguerrer/Netology-Final/pkg/metrics"
	"github.com/sangreguerrer/Netology-Final/pkg/outbox"
	"github.com/sangreguerrer/Netology-Final/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// StockDebiter is the inventory ledger's debit surface.
type StockDebiter interface {
	Debit(ctx context.Context, tx *gorm.DB, productInfoID uuid.UUID, qty int) (int, error)
}

// PlaceInput identifies the basket to convert and the delivery contact.
type PlaceInput struct {
	UserID    uuid.UUID
	OrderID   uuid.UUID
	ContactID uuid.UUID
}

// DebitedLine reports one stock movement of a placed order.
type DebitedLine struct {
	ProductInfoID uuid.UUID `json:"product_info_id"`
	Quantity      int       `json:"quantity"`
	Remaining     int       `json:"remaining"`
}

// Receipt is the successful checkout result.
type Receipt struct {
	OrderID uuid.UUID        `json:"order_id"`
	State   enums.OrderState `json:"state"`
	Lines   []DebitedLine    `json:"lines"`
}

// Service converts a basket into a placed order.
type Service interface {
	Place(ctx context.Context, input PlaceInput) (*Receipt, error)
}

type service struct {
	repo              Repository
	tx                txRunner
	ledger            StockDebiter
	outbox            outboxEmitter
	logg              *logger.Logger
	lowStockThreshold int
}

// NewService builds the checkout finalizer.
func NewService(repo Repository, tx txRunner, ledger StockDebiter, emitter outboxEmitter, logg *logger.Logger, lowStockThreshold int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger is required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter is required")
	}
	return &service{
		repo:              repo,
		tx:                tx,
		ledger:            ledger,
		outbox:            emitter,
		logg:              logg,
		lowStockThreshold: lowStockThreshold,
	}, nil
}

// Place runs the whole conversion in one transaction: guard the state flip,
// debit stock per listing, queue the events. Any failure rolls everything
// back, so stock and order state only ever move together.
func (s *service) Place(ctx context.Context, input PlaceInput) (*Receipt, error) {
	var receipt *Receipt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindUserBasket(ctx, input.OrderID, input.UserID)
		if err != nil {
			return fmt.Errorf("loading basket: %w", err)
		}
		if order == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
		}
		if len(order.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "basket is empty")
		}

		affected, err := repo.MarkPlaced(ctx, input.OrderID, input.UserID, input.ContactID)
		if err != nil {
			return fmt.Errorf("placing order: %w", err)
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
		}

		// items are unique per listing, but aggregate anyway so a single
		// debit per listing is the invariant, not an accident of the schema
		demand := make(map[uuid.UUID]int, len(order.Items))
		shopByListing := make(map[uuid.UUID]uuid.UUID, len(order.Items))
		orderedIDs := make([]uuid.UUID, 0, len(order.Items))
		for _, item := range order.Items {
			if _, ok := demand[item.ProductInfoID]; !ok {
				orderedIDs = append(orderedIDs, item.ProductInfoID)
			}
			demand[item.ProductInfoID] += item.Quantity
			if item.ProductInfo != nil {
				shopByListing[item.ProductInfoID] = item.ProductInfo.ShopID
			}
		}

		lines := make([]DebitedLine, 0, len(orderedIDs))
		for _, productInfoID := range orderedIDs {
			qty := demand[productInfoID]
			remaining, err := s.ledger.Debit(ctx, tx, productInfoID, qty)
			if err != nil {
				return err
			}
			lines = append(lines, DebitedLine{
				ProductInfoID: productInfoID,
				Quantity:      qty,
				Remaining:     remaining,
			})
		}

		actor := &outbox.ActorRef{UserID: input.UserID, Role: string(enums.UserTypeBuyer)}
		err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			Data: payloads.OrderPlacedEvent{
				OrderID: order.ID,
				UserID:  input.UserID,
			},
			Version: 1,
		})
		if err != nil {
			return fmt.Errorf("queueing order placed event: %w", err)
		}

		for _, line := range lines {
			if line.Remaining >= s.lowStockThreshold {
				continue
			}
			err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventLowStock,
				AggregateType: enums.AggregateProductInfo,
				AggregateID:   line.ProductInfoID,
				Actor:         actor,
				Data: payloads.LowStockEvent{
					ProductInfoID: line.ProductInfoID,
					ShopID:        shopByListing[line.ProductInfoID],
					Remaining:     line.Remaining,
				},
				Version: 1,
			})
			if err != nil {
				return fmt.Errorf("queueing low stock event: %w", err)
			}
			metrics.ObserveLowStock()
		}

		receipt = &Receipt{
			OrderID: order.ID,
			State:   enums.OrderStateNew,
			Lines:   lines,
		}
		return nil
	})
	if err != nil {
		s.observeFailure(ctx, input, err)
		return nil, err
	}

	metrics.ObserveCheckout(metrics.CheckoutResultPlaced)
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": receipt.OrderID.String(),
			"lines":    len(receipt.Lines),
		})
		s.logg.Info(logCtx, "order placed")
	}
	return receipt, nil
}

func (s *service) observeFailure(ctx context.Context, input PlaceInput, err error) {
	typed := pkgerrors.As(err)
	switch {
	case typed != nil && typed.Code() == pkgerrors.CodeNotFound:
		metrics.ObserveCheckout(metrics.CheckoutResultNotFound)
	case typed != nil && typed.Code() == pkgerrors.CodeInsufficientStock:
		metrics.ObserveCheckout(metrics.CheckoutResultInsufficientStock)
	default:
		metrics.ObserveCheckout(metrics.CheckoutResultError)
	}
	if s.logg != nil {
		logCtx := s.logg.WithField(ctx, "order_id", input.OrderID.String())
		s.logg.Warn(logCtx, fmt.Sprintf("checkout failed: %v", err))
	}
}
