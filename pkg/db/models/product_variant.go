package models

import "github.com/google/uuid"

// ProductVariant is one purchasable configuration of a product. SKUs are
// unique across all variants ever created, soft-deleted included, so the
// uniqueness index has no tombstone carve-out.
type ProductVariant struct {
	Base
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	SKU       string    `gorm:"column:sku;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null"`

	// PriceCents overrides the product base price when set.
	PriceCents *int64 `gorm:"column:price_cents"`

	StockQuantity     int `gorm:"column:stock_quantity;not null;default:0"`
	LowStockThreshold int `gorm:"column:low_stock_threshold;not null"`

	WeightGrams *float64 `gorm:"column:weight_grams"`
	Length      *float64 `gorm:"column:length"`
	Width       *float64 `gorm:"column:width"`
	Height      *float64 `gorm:"column:height"`

	IsActive bool `gorm:"column:is_active;not null;index"`

	Product         *Product                `gorm:"foreignKey:ProductID"`
	AttributeValues []VariantAttributeValue `gorm:"foreignKey:VariantID"`
}

// EffectivePriceCents returns the variant price when set, else the product
// base price.
func (v ProductVariant) EffectivePriceCents(basePriceCents int64) int64 {
	if v.PriceCents != nil {
		return *v.PriceCents
	}
	return basePriceCents
}

// IsInStock reports whether the variant has units available.
func (v ProductVariant) IsInStock() bool {
	return v.StockQuantity > 0
}

// IsLowStock reports whether stock has fallen to the alert threshold.
func (v ProductVariant) IsLowStock() bool {
	return v.StockQuantity <= v.LowStockThreshold
}
