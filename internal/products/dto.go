package products

import (
	"time"

	"github.com/angelmondragon/catalog-backend/internal/variants"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
	"github.com/angelmondragon/catalog-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryRefDTO is the compact category reference embedded in product
// payloads.
type CategoryRefDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// ImageDTO represents a product image payload.
type ImageDTO struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	ImageURL  string    `json:"image_url"`
	AltText   string    `json:"alt_text,omitempty"`
	Position  int       `json:"position"`
	IsPrimary bool      `json:"is_primary"`
}

// ProductSummaryDTO is the browse-listing shape: base fields plus price and
// stock figures derived from the active variants.
type ProductSummaryDTO struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	CategoryID      uuid.UUID       `json:"category_id"`
	BasePrice       decimal.Decimal `json:"base_price"`
	MinPrice        decimal.Decimal `json:"min_price"`
	MaxPrice        decimal.Decimal `json:"max_price"`
	TotalStock      int             `json:"total_stock"`
	IsInStock       bool            `json:"is_in_stock"`
	IsFeatured      bool            `json:"is_featured"`
	PrimaryImageURL *string         `json:"primary_image_url,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ProductDTO is the detail shape with category, images, and full variants.
type ProductDTO struct {
	ID              uuid.UUID             `json:"id"`
	Name            string                `json:"name"`
	Slug            string                `json:"slug"`
	Description     string                `json:"description,omitempty"`
	Category        CategoryRefDTO        `json:"category"`
	BasePrice       decimal.Decimal       `json:"base_price"`
	MinPrice        decimal.Decimal       `json:"min_price"`
	MaxPrice        decimal.Decimal       `json:"max_price"`
	TotalStock      int                   `json:"total_stock"`
	IsInStock       bool                  `json:"is_in_stock"`
	IsActive        bool                  `json:"is_active"`
	IsFeatured      bool                  `json:"is_featured"`
	MetaTitle       string                `json:"meta_title,omitempty"`
	MetaDescription string                `json:"meta_description,omitempty"`
	Images          []ImageDTO            `json:"images"`
	Variants        []variants.VariantDTO `json:"variants"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// ListResult pairs a product page with its pagination envelope.
type ListResult struct {
	Products   []ProductSummaryDTO `json:"products"`
	Pagination pagination.Result   `json:"pagination"`
}

// priceAndStock derives the effective price window and stock totals from the
// product's active variants. Without variants the base price stands alone and
// the product counts as out of stock.
func priceAndStock(product *models.Product) (minCents, maxCents int64, totalStock int) {
	minCents = product.BasePriceCents
	maxCents = product.BasePriceCents
	for _, variant := range product.Variants {
		if !variant.IsActive {
			continue
		}
		effective := variant.EffectivePriceCents(product.BasePriceCents)
		if effective < minCents {
			minCents = effective
		}
		if effective > maxCents {
			maxCents = effective
		}
		totalStock += variant.StockQuantity
	}
	return minCents, maxCents, totalStock
}

// NewProductSummaryDTO builds the listing shape from a product with variants
// and images preloaded.
func NewProductSummaryDTO(product *models.Product) ProductSummaryDTO {
	minCents, maxCents, totalStock := priceAndStock(product)
	dto := ProductSummaryDTO{
		ID:         product.ID,
		Name:       product.Name,
		Slug:       product.Slug,
		CategoryID: product.CategoryID,
		BasePrice:  types.CentsToDecimal(product.BasePriceCents),
		MinPrice:   types.CentsToDecimal(minCents),
		MaxPrice:   types.CentsToDecimal(maxCents),
		TotalStock: totalStock,
		IsInStock:  totalStock > 0,
		IsFeatured: product.IsFeatured,
		CreatedAt:  product.CreatedAt,
	}
	for _, image := range product.Images {
		if image.IsPrimary {
			url := image.ImageURL
			dto.PrimaryImageURL = &url
			break
		}
	}
	return dto
}

// NewProductDTO builds the detail shape from a fully preloaded product.
func NewProductDTO(product *models.Product) *ProductDTO {
	minCents, maxCents, totalStock := priceAndStock(product)
	dto := &ProductDTO{
		ID:              product.ID,
		Name:            product.Name,
		Slug:            product.Slug,
		Description:     product.Description,
		BasePrice:       types.CentsToDecimal(product.BasePriceCents),
		MinPrice:        types.CentsToDecimal(minCents),
		MaxPrice:        types.CentsToDecimal(maxCents),
		TotalStock:      totalStock,
		IsInStock:       totalStock > 0,
		IsActive:        product.IsActive,
		IsFeatured:      product.IsFeatured,
		MetaTitle:       product.MetaTitle,
		MetaDescription: product.MetaDescription,
		Images:          make([]ImageDTO, 0, len(product.Images)),
		Variants:        make([]variants.VariantDTO, 0, len(product.Variants)),
		CreatedAt:       product.CreatedAt,
		UpdatedAt:       product.UpdatedAt,
	}
	if product.Category != nil {
		dto.Category = CategoryRefDTO{
			ID:   product.Category.ID,
			Name: product.Category.Name,
			Slug: product.Category.Slug,
		}
	}
	for _, image := range product.Images {
		dto.Images = append(dto.Images, NewImageDTO(&image))
	}
	for i := range product.Variants {
		dto.Variants = append(dto.Variants, *variants.NewVariantDTO(&product.Variants[i], product.BasePriceCents))
	}
	return dto
}

// NewImageDTO builds an image payload from the persisted model.
func NewImageDTO(image *models.ProductImage) ImageDTO {
	return ImageDTO{
		ID:        image.ID,
		ProductID: image.ProductID,
		ImageURL:  image.ImageURL,
		AltText:   image.AltText,
		Position:  image.Position,
		IsPrimary: image.IsPrimary,
	}
}
