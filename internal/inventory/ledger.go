package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangreguerrer/Netology-Final/pkg/db/models"
	pkgerrors "github.com/sangreguerrer/Netology-Final/pkg/errors"
	"github.com/sangreguerrer/Netology-Final/pkg/logger"
)

// Ledger is the single write path for listing stock. Quantity moves only
// through Debit (checkout) and Reload (partner stock reset); nothing else in
// the codebase may touch product_infos.quantity.
type Ledger struct {
	logg *logger.Logger
}

func NewLedger(logg *logger.Logger) *Ledger {
	return &Ledger{logg: logg}
}

// StockLevel is one target quantity in a partner reload.
type StockLevel struct {
	ProductInfoID uuid.UUID
	Quantity      int
}

// ShortfallDetails names the listing that could not cover a debit.
type ShortfallDetails struct {
	ProductInfoID uuid.UUID `json:"product_info_id"`
	Requested     int       `json:"requested"`
	Available     int       `json:"available"`
}

// Debit atomically decrements stock for one listing inside the caller's
// transaction. The decrement is guarded so quantity can never go negative;
// on shortfall the caller's transaction must be rolled back. Returns the
// remaining quantity after the debit.
func (l *Ledger) Debit(ctx context.Context, tx *gorm.DB, productInfoID uuid.UUID, qty int) (int, error) {
	if tx == nil {
		return 0, errors.New("transaction required")
	}
	if qty <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "debit quantity must be positive")
	}

	res := tx.WithContext(ctx).
		Model(&models.ProductInfo{}).
		Where("id = ? AND quantity >= ?", productInfoID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return 0, fmt.Errorf("debiting stock: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		var info models.ProductInfo
		err := tx.WithContext(ctx).
			Select("id", "quantity").
			Where("id = ?", productInfoID).
			First(&info).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "product listing not found")
		}
		if err != nil {
			return 0, fmt.Errorf("reading stock after failed debit: %w", err)
		}
		return 0, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(ShortfallDetails{
				ProductInfoID: productInfoID,
				Requested:     qty,
				Available:     info.Quantity,
			})
	}

	var remaining int
	err := tx.WithContext(ctx).
		Model(&models.ProductInfo{}).
		Select("quantity").
		Where("id = ?", productInfoID).
		Scan(&remaining).Error
	if err != nil {
		return 0, fmt.Errorf("reading remaining stock: %w", err)
	}
	return remaining, nil
}

// Reload resets quantities for a shop's own listings. Levels referencing
// listings the shop does not own fail the whole batch.
func (l *Ledger) Reload(ctx context.Context, tx *gorm.DB, shopID uuid.UUID, levels []StockLevel) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	for _, level := range levels {
		if level.Quantity < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative").
				WithDetails(map[string]any{"product_info_id": level.ProductInfoID})
		}
		res := tx.WithContext(ctx).
			Model(&models.ProductInfo{}).
			Where("id = ? AND shop_id = ?", level.ProductInfoID, shopID).
			Update("quantity", level.Quantity)
		if res.Error != nil {
			return fmt.Errorf("reloading stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product listing not found for shop").
				WithDetails(map[string]any{"product_info_id": level.ProductInfoID})
		}
	}
	if l.logg != nil {
		logCtx := l.logg.WithFields(ctx, map[string]any{
			"shop_id": shopID.String(),
			"levels":  len(levels),
		})
		l.logg.Info(logCtx, "stock reloaded")
	}
	return nil
}
