package variants

import (
	"context"
	"errors"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger applies stock mutations to variants. Reductions are a single
// conditional UPDATE so concurrent writers can never drive stock negative.
type Ledger struct {
	db *gorm.DB
}

// NewLedger builds a ledger over the provided GORM DB.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WithTx returns a ledger bound to the provided transaction.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{db: tx}
}

// SetStock overwrites the stock level.
func (l *Ledger) SetStock(ctx context.Context, variantID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
	}
	result := l.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		Update("stock_quantity", quantity)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "set stock")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	return nil
}

// AddStock increments the stock level by delta. Negative deltas are rejected;
// removals go through ReduceStock so the floor check applies.
func (l *Ledger) AddStock(ctx context.Context, variantID uuid.UUID, delta int) error {
	if delta < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock delta cannot be negative")
	}
	result := l.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "add stock")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	return nil
}

// ReduceStock decrements stock iff enough units remain. The quantity guard
// lives in the WHERE clause, so a lost race surfaces as zero affected rows
// rather than negative stock.
func (l *Ledger) ReduceStock(ctx context.Context, variantID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
	}
	result := l.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("id = ? AND stock_quantity >= ?", variantID, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "reduce stock")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var current models.ProductVariant
	err := l.db.WithContext(ctx).
		Select("id", "stock_quantity").
		First(&current, "id = ?", variantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant stock")
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(map[string]any{
			"variant_id": variantID,
			"available":  current.StockQuantity,
			"requested":  quantity,
		})
}
