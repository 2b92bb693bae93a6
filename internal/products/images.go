package products

import (
	"context"
	"errors"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FindImage loads a live image row.
func (r *Repository) FindImage(ctx context.Context, id uuid.UUID) (*models.ProductImage, error) {
	var image models.ProductImage
	if err := r.db.WithContext(ctx).First(&image, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// ListImages returns the product's live images in display order.
func (r *Repository) ListImages(ctx context.Context, productID uuid.UUID) ([]models.ProductImage, error) {
	var rows []models.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position ASC").
		Find(&rows).Error
	return rows, err
}

// CountImages counts the product's live images.
func (r *Repository) CountImages(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductImage{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	return count, err
}

// CreateImage inserts an image row.
func (r *Repository) CreateImage(ctx context.Context, image *models.ProductImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

// SaveImage persists field changes on an existing image.
func (r *Repository) SaveImage(ctx context.Context, image *models.ProductImage) error {
	return r.db.WithContext(ctx).Save(image).Error
}

// DeleteImage tombstones an image row.
func (r *Repository) DeleteImage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ProductImage{}).Error
}

// ClearPrimary drops the primary flag from every image of the product except
// keepID, when given.
func (r *Repository) ClearPrimary(ctx context.Context, productID uuid.UUID, keepID *uuid.UUID) error {
	qb := r.db.WithContext(ctx).Model(&models.ProductImage{}).
		Where("product_id = ? AND is_primary = ?", productID, true)
	if keepID != nil {
		qb = qb.Where("id <> ?", *keepID)
	}
	return qb.Update("is_primary", false).Error
}

// NextPosition returns the next free display slot for the product.
func (r *Repository) NextPosition(ctx context.Context, productID uuid.UUID) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).Model(&models.ProductImage{}).
		Where("product_id = ?", productID).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

// SetImagePosition updates one image's display slot.
func (r *Repository) SetImagePosition(ctx context.Context, imageID uuid.UUID, position int) error {
	return r.db.WithContext(ctx).Model(&models.ProductImage{}).
		Where("id = ?", imageID).
		Update("position", position).Error
}

// PromoteFirstImage marks the lowest-positioned remaining image primary, if
// any image is left.
func (r *Repository) PromoteFirstImage(ctx context.Context, productID uuid.UUID) error {
	var image models.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position ASC").
		First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return r.db.WithContext(ctx).Model(&models.ProductImage{}).
		Where("id = ?", image.ID).
		Update("is_primary", true).Error
}
