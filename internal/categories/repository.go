package categories

import (
	"context"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wires together category persistence helpers.
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

// FindByID loads a live category.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindActiveBySlug loads an active, non-deleted category by slug.
func (r *Repository) FindActiveBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		First(&category, "slug = ? AND is_active = ?", slug, true).
		Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// SlugExists reports whether any row, soft-deleted included, holds the slug.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.Category{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

// Save persists field changes on an existing category.
func (r *Repository) Save(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// SoftDeleteByIDs tombstones the given categories.
func (r *Repository) SoftDeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.Category{}).Error
}

// CountDirectProducts counts live products attached directly to the category.
func (r *Repository) CountDirectProducts(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// ListAll returns live categories in tree order. includeInactive keeps
// deactivated nodes in the result.
func (r *Repository) ListAll(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	qb := r.db.WithContext(ctx).Order("lft ASC")
	if !includeInactive {
		qb = qb.Where("is_active = ?", true)
	}
	var rows []models.Category
	err := qb.Find(&rows).Error
	return rows, err
}

// ActiveProductCounts returns the number of active products attached directly
// to each category that has any.
func (r *Repository) ActiveProductCounts(ctx context.Context) (map[uuid.UUID]int, error) {
	type row struct {
		CategoryID uuid.UUID
		Total      int
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("category_id, COUNT(*) AS total").
		Where("is_active = ?", true).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int, len(rows))
	for _, item := range rows {
		counts[item.CategoryID] = item.Total
	}
	return counts, nil
}
