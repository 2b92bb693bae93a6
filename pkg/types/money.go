package types

import (
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

var centsPerUnit = decimal.NewFromInt(100)

// CentsToDecimal renders integer cents as a two-place decimal amount.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(centsPerUnit)
}

// CentsToDecimalPtr is CentsToDecimal for optional amounts.
func CentsToDecimalPtr(cents *int64) *decimal.Decimal {
	if cents == nil {
		return nil
	}
	amount := CentsToDecimal(*cents)
	return &amount
}

// DecimalToCents converts a decimal amount like "999.99" to integer cents.
// Amounts with sub-cent precision or a negative sign are rejected.
func DecimalToCents(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	cents := amount.Mul(centsPerUnit)
	if !cents.IsInteger() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "price precision is limited to cents")
	}
	return cents.IntPart(), nil
}

// DecimalToCentsPtr is DecimalToCents for optional amounts.
func DecimalToCentsPtr(amount *decimal.Decimal) (*int64, error) {
	if amount == nil {
		return nil, nil
	}
	cents, err := DecimalToCents(*amount)
	if err != nil {
		return nil, err
	}
	return &cents, nil
}
