package variants

import (
	"context"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wires together variant persistence helpers.
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

// FindByID loads a live variant with its attribute values.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("AttributeValues.AttributeValue.Attribute").
		First(&variant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// FindProduct loads the live product the variant hangs off.
func (r *Repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// SKUExists reports whether any variant, soft-deleted included, holds the SKU.
// excludeID carves out the variant being updated.
func (r *Repository) SKUExists(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error) {
	qb := r.db.WithContext(ctx).Unscoped().Model(&models.ProductVariant{}).
		Where("sku = ?", sku)
	if excludeID != nil {
		qb = qb.Where("id <> ?", *excludeID)
	}
	var count int64
	err := qb.Count(&count).Error
	return count > 0, err
}

// Create inserts a variant row.
func (r *Repository) Create(ctx context.Context, variant *models.ProductVariant) error {
	return r.db.WithContext(ctx).Create(variant).Error
}

// Save persists field changes on an existing variant.
func (r *Repository) Save(ctx context.Context, variant *models.ProductVariant) error {
	return r.db.WithContext(ctx).Save(variant).Error
}

// SoftDelete tombstones a variant.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ProductVariant{}).Error
}

// FilterKnownAttributeValueIDs returns the subset of ids that exist.
func (r *Repository) FilterKnownAttributeValueIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var known []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.ProductAttributeValue{}).
		Where("id IN ?", ids).
		Pluck("id", &known).Error
	if err != nil {
		return nil, err
	}
	return known, nil
}

// ReplaceAttributeValues swaps the variant's attribute-value links for the
// provided set.
func (r *Repository) ReplaceAttributeValues(ctx context.Context, variantID uuid.UUID, valueIDs []uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Unscoped().
		Where("variant_id = ?", variantID).
		Delete(&models.VariantAttributeValue{}).Error; err != nil {
		return err
	}
	if len(valueIDs) == 0 {
		return nil
	}
	links := make([]models.VariantAttributeValue, len(valueIDs))
	for i, valueID := range valueIDs {
		links[i] = models.VariantAttributeValue{
			VariantID:        variantID,
			AttributeValueID: valueID,
		}
	}
	return tx.Create(&links).Error
}

// ListLowStock returns active variants at or below their low-stock threshold.
func (r *Repository) ListLowStock(ctx context.Context) ([]models.ProductVariant, error) {
	var rows []models.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("is_active = ? AND stock_quantity <= low_stock_threshold", true).
		Order("stock_quantity ASC").
		Find(&rows).Error
	return rows, err
}

// ListByProduct returns the live variants of a product, attribute values
// preloaded.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductVariant, error) {
	var rows []models.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("AttributeValues.AttributeValue.Attribute").
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
