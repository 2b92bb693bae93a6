package variants

import (
	"time"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VariantDTO represents a purchasable variant payload returned to clients.
type VariantDTO struct {
	ID                uuid.UUID           `json:"id"`
	ProductID         uuid.UUID           `json:"product_id"`
	SKU               string              `json:"sku"`
	Name              string              `json:"name"`
	Price             *decimal.Decimal    `json:"price,omitempty"`
	EffectivePrice    decimal.Decimal     `json:"effective_price"`
	StockQuantity     int                 `json:"stock_quantity"`
	LowStockThreshold int                 `json:"low_stock_threshold"`
	IsInStock         bool                `json:"is_in_stock"`
	IsLowStock        bool                `json:"is_low_stock"`
	WeightGrams       *float64            `json:"weight_grams,omitempty"`
	Length            *float64            `json:"length,omitempty"`
	Width             *float64            `json:"width,omitempty"`
	Height            *float64            `json:"height,omitempty"`
	IsActive          bool                `json:"is_active"`
	Attributes        []AttributeValueDTO `json:"attributes"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// AttributeValueDTO is one resolved attribute assignment, e.g. Color: Red.
type AttributeValueDTO struct {
	AttributeValueID uuid.UUID `json:"attribute_value_id"`
	Attribute        string    `json:"attribute"`
	Value            string    `json:"value"`
}

// BulkStockSummary reports the outcome of a batch of independent stock
// updates.
type BulkStockSummary struct {
	Success   int         `json:"success"`
	Failed    int         `json:"failed"`
	FailedIDs []uuid.UUID `json:"failed_ids"`
}

// NewVariantDTO builds a DTO from the persisted model. basePriceCents is the
// owning product's base price, used when the variant carries no override.
func NewVariantDTO(variant *models.ProductVariant, basePriceCents int64) *VariantDTO {
	dto := &VariantDTO{
		ID:                variant.ID,
		ProductID:         variant.ProductID,
		SKU:               variant.SKU,
		Name:              variant.Name,
		Price:             types.CentsToDecimalPtr(variant.PriceCents),
		EffectivePrice:    types.CentsToDecimal(variant.EffectivePriceCents(basePriceCents)),
		StockQuantity:     variant.StockQuantity,
		LowStockThreshold: variant.LowStockThreshold,
		IsInStock:         variant.IsInStock(),
		IsLowStock:        variant.IsLowStock(),
		WeightGrams:       variant.WeightGrams,
		Length:            variant.Length,
		Width:             variant.Width,
		Height:            variant.Height,
		IsActive:          variant.IsActive,
		Attributes:        []AttributeValueDTO{},
		CreatedAt:         variant.CreatedAt,
		UpdatedAt:         variant.UpdatedAt,
	}
	for _, link := range variant.AttributeValues {
		if link.AttributeValue == nil {
			continue
		}
		entry := AttributeValueDTO{
			AttributeValueID: link.AttributeValueID,
			Value:            link.AttributeValue.Value,
		}
		if link.AttributeValue.Attribute != nil {
			entry.Attribute = link.AttributeValue.Attribute.Name
		}
		dto.Attributes = append(dto.Attributes, entry)
	}
	return dto
}
