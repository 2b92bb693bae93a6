package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wires together product persistence helpers and the listing
// query.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindDetailByID loads the product with category, images, and variants.
func (r *Repository) FindDetailByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.detailQuery(ctx).First(&product, "products.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindDetailBySlug loads an active product with its full detail graph.
func (r *Repository) FindDetailBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.detailQuery(ctx).
		First(&product, "products.slug = ? AND products.is_active = ?", slug, true).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) detailQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Variants.AttributeValues.AttributeValue.Attribute")
}

// SlugExists reports whether any product row, soft-deleted included, holds
// the slug.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.Product{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Save persists field changes on an existing product.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// CascadeSoftDelete tombstones the product together with its variants and
// images. Call inside a transaction.
func (r *Repository) CascadeSoftDelete(ctx context.Context, productID uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductVariant{}).Error; err != nil {
		return err
	}
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductImage{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", productID).Delete(&models.Product{}).Error
}

// FindCategory loads a live category.
func (r *Repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListProducts runs the browse query: conjunctive filters over active,
// non-deleted products, sorted and page-paginated.
func (r *Repository) ListProducts(ctx context.Context, input ListInput) (*ListResult, error) {
	params := pagination.Normalize(input.Pagination)

	qb := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("products.is_active = ?", true)

	filter := input.Filters
	if categorySlug := strings.TrimSpace(filter.CategorySlug); categorySlug != "" {
		categoryIDs, found, err := r.subtreeCategoryIDs(ctx, categorySlug)
		if err != nil {
			return nil, err
		}
		if !found {
			// Unknown slug filters everything out rather than erroring.
			return &ListResult{
				Products:   []ProductSummaryDTO{},
				Pagination: pagination.BuildResult(params, 0),
			}, nil
		}
		qb = qb.Where("products.category_id IN ?", categoryIDs)
	}

	if filter.PriceMinCents != nil {
		qb = qb.Where(
			"(products.base_price_cents >= ? OR EXISTS ("+
				"SELECT 1 FROM product_variants v WHERE v.product_id = products.id"+
				" AND v.deleted_at IS NULL AND v.is_active = ?"+
				" AND v.price_cents IS NOT NULL AND v.price_cents >= ?))",
			*filter.PriceMinCents, true, *filter.PriceMinCents,
		)
	}
	if filter.PriceMaxCents != nil {
		qb = qb.Where(
			"(products.base_price_cents <= ? OR EXISTS ("+
				"SELECT 1 FROM product_variants v WHERE v.product_id = products.id"+
				" AND v.deleted_at IS NULL AND v.is_active = ?"+
				" AND v.price_cents IS NOT NULL AND v.price_cents <= ?))",
			*filter.PriceMaxCents, true, *filter.PriceMaxCents,
		)
	}
	if filter.FeaturedOnly {
		qb = qb.Where("products.is_featured = ?", true)
	}
	if filter.InStockOnly {
		qb = qb.Where(
			"EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = products.id"+
				" AND v.deleted_at IS NULL AND v.is_active = ? AND v.stock_quantity > 0)",
			true,
		)
	}
	// Attribute filters are an AND set: one EXISTS per requested value. Only
	// active variants count as carriers.
	for _, valueID := range filter.AttributeValueIDs {
		qb = qb.Where(
			"EXISTS (SELECT 1 FROM variant_attribute_values vav"+
				" JOIN product_variants v ON v.id = vav.variant_id"+
				" WHERE v.product_id = products.id AND v.deleted_at IS NULL AND v.is_active = ?"+
				" AND vav.deleted_at IS NULL AND vav.attribute_value_id = ?)",
			true, valueID,
		)
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where(
			"(LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?"+
				" OR EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = products.id"+
				" AND v.deleted_at IS NULL AND LOWER(v.sku) LIKE ?))",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := qb.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.Product
	err := qb.
		Preload("Variants", "is_active = ?", true).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order(orderClause(input.SortField, input.SortOrder)).
		Offset(params.Offset()).
		Limit(params.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]ProductSummaryDTO, 0, len(rows))
	for i := range rows {
		summaries = append(summaries, NewProductSummaryDTO(&rows[i]))
	}
	return &ListResult{
		Products:   summaries,
		Pagination: pagination.BuildResult(params, total),
	}, nil
}

// subtreeCategoryIDs resolves a category slug to its whole subtree. The
// second return is false when no active category holds the slug.
func (r *Repository) subtreeCategoryIDs(ctx context.Context, slug string) ([]uuid.UUID, bool, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		First(&category, "slug = ? AND is_active = ?", slug, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var ids []uuid.UUID
	err = r.db.WithContext(ctx).Model(&models.Category{}).
		Where("lft >= ? AND rgt <= ?", category.Lft, category.Rgt).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, false, err
	}
	return ids, true, nil
}

func orderClause(field enums.ProductSortField, order enums.SortOrder) string {
	column := "products.created_at"
	switch field {
	case enums.ProductSortPrice:
		column = "products.base_price_cents"
	case enums.ProductSortName:
		column = "products.name"
	case enums.ProductSortCreatedAt:
		column = "products.created_at"
	}
	direction := "DESC"
	if order == enums.SortAsc {
		direction = "ASC"
	}
	return fmt.Sprintf("%s %s, products.id %s", column, direction, direction)
}
