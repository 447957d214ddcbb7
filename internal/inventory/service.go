package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/sangreguerrer/Netology-Final/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service wraps the ledger's reload path in its own transaction for the
// partner stock endpoint.
type Service interface {
	ReloadShopStock(ctx context.Context, shopID uuid.UUID, levels []StockLevel) error
}

type service struct {
	tx     txRunner
	ledger *Ledger
}

// NewService builds the inventory write service.
func NewService(tx txRunner, ledger *Ledger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	return &service{tx: tx, ledger: ledger}, nil
}

func (s *service) ReloadShopStock(ctx context.Context, shopID uuid.UUID, levels []StockLevel) error {
	if len(levels) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one stock level is required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.ledger.Reload(ctx, tx, shopID, levels)
	})
}
