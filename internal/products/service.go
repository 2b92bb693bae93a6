package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/slug"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Service exposes product management, browsing, and image operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	GetBySlug(ctx context.Context, productSlug string) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListInput) (*ListResult, error)
	BulkUpdateProducts(ctx context.Context, updates []BulkProductUpdate) (*BulkUpdateSummary, error)

	AddImage(ctx context.Context, productID uuid.UUID, input ImageInput) (*ImageDTO, error)
	UpdateImage(ctx context.Context, imageID uuid.UUID, input UpdateImageInput) (*ImageDTO, error)
	ReorderImages(ctx context.Context, productID uuid.UUID, orderedIDs []uuid.UUID) ([]ImageDTO, error)
	DeleteImage(ctx context.Context, imageID uuid.UUID) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name            string
	Description     string
	CategoryID      uuid.UUID
	BasePriceCents  int64
	IsActive        bool
	IsFeatured      bool
	MetaTitle       string
	MetaDescription string
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name            *string
	Description     *string
	CategoryID      *uuid.UUID
	BasePriceCents  *int64
	IsActive        *bool
	IsFeatured      *bool
	MetaTitle       *string
	MetaDescription *string
}

// BulkProductUpdate is one entry in a bulk product mutation.
type BulkProductUpdate struct {
	ProductID uuid.UUID
	Input     UpdateProductInput
}

// BulkUpdateSummary reports the outcome of a batch of independent product
// updates.
type BulkUpdateSummary struct {
	Success   int         `json:"success"`
	Failed    int         `json:"failed"`
	FailedIDs []uuid.UUID `json:"failed_ids"`
}

// ImageInput holds the payload to attach an image.
type ImageInput struct {
	ImageURL  string
	AltText   string
	IsPrimary bool
}

// UpdateImageInput holds optional mutation values for an image.
type UpdateImageInput struct {
	ImageURL  *string
	AltText   *string
	IsPrimary *bool
}

// service implements the product service.
type service struct {
	repo     *Repository
	dbClient *db.Client
	logg     *logger.Logger
}

// NewService constructs a product service instance.
func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, dbClient: dbClient, logg: logg}, nil
}

// CreateProduct inserts a product with a generated slug that never collides,
// soft-deleted rows included.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.BasePriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price cannot be negative")
	}
	if err := s.ensureActiveCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	productSlug, err := slug.Unique(ctx, name, s.repo.SlugExists)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generate product slug")
	}

	product := &models.Product{
		Name:            name,
		Slug:            productSlug,
		Description:     input.Description,
		CategoryID:      input.CategoryID,
		BasePriceCents:  input.BasePriceCents,
		IsActive:        input.IsActive,
		IsFeatured:      input.IsFeatured,
		MetaTitle:       input.MetaTitle,
		MetaDescription: input.MetaDescription,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return s.loadDTO(ctx, product.ID)
}

// UpdateProduct mutates product fields. Slugs stay stable across renames.
func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.CategoryID != nil && *input.CategoryID != product.CategoryID {
		if err := s.ensureActiveCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *input.CategoryID
	}
	if input.BasePriceCents != nil {
		if *input.BasePriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price cannot be negative")
		}
		product.BasePriceCents = *input.BasePriceCents
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}
	if input.MetaTitle != nil {
		product.MetaTitle = *input.MetaTitle
	}
	if input.MetaDescription != nil {
		product.MetaDescription = *input.MetaDescription
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.loadDTO(ctx, product.ID)
}

// DeleteProduct tombstones the product and cascades to its variants and
// images in one transaction.
func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CascadeSoftDelete(ctx, productID)
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

// GetBySlug returns the active product detail.
func (s *service) GetBySlug(ctx context.Context, productSlug string) (*ProductDTO, error) {
	product, err := s.repo.FindDetailBySlug(ctx, productSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return NewProductDTO(product), nil
}

// ListProducts runs the browse query.
func (s *service) ListProducts(ctx context.Context, input ListInput) (*ListResult, error) {
	result, err := s.repo.ListProducts(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return result, nil
}

// BulkUpdateProducts applies each update independently and reports a summary.
func (s *service) BulkUpdateProducts(ctx context.Context, updates []BulkProductUpdate) (*BulkUpdateSummary, error) {
	summary := &BulkUpdateSummary{FailedIDs: []uuid.UUID{}}
	var failures error
	for _, update := range updates {
		if _, err := s.UpdateProduct(ctx, update.ProductID, update.Input); err != nil {
			summary.Failed++
			summary.FailedIDs = append(summary.FailedIDs, update.ProductID)
			failures = multierr.Append(failures, fmt.Errorf("product %s: %w", update.ProductID, err))
			continue
		}
		summary.Success++
	}
	if failures != nil {
		s.logg.Warn(ctx, fmt.Sprintf("bulk product update finished with %d failure(s): %v", summary.Failed, failures))
	}
	return summary, nil
}

// AddImage attaches an image. The product's first image becomes primary
// automatically; an explicit primary takes the flag over from the previous
// holder.
func (s *service) AddImage(ctx context.Context, productID uuid.UUID, input ImageInput) (*ImageDTO, error) {
	if strings.TrimSpace(input.ImageURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image_url is required")
	}
	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	image := &models.ProductImage{
		ProductID: productID,
		ImageURL:  strings.TrimSpace(input.ImageURL),
		AltText:   input.AltText,
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		count, err := txRepo.CountImages(ctx, productID)
		if err != nil {
			return err
		}
		position, err := txRepo.NextPosition(ctx, productID)
		if err != nil {
			return err
		}
		image.Position = position
		image.IsPrimary = input.IsPrimary || count == 0

		if image.IsPrimary {
			if err := txRepo.ClearPrimary(ctx, productID, nil); err != nil {
				return err
			}
		}
		return txRepo.CreateImage(ctx, image)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add image")
	}

	dto := NewImageDTO(image)
	return &dto, nil
}

// UpdateImage mutates image fields. Promoting an image to primary demotes the
// previous holder in the same transaction; demoting the current primary leaves
// the product with no primary image.
func (s *service) UpdateImage(ctx context.Context, imageID uuid.UUID, input UpdateImageInput) (*ImageDTO, error) {
	image, err := s.repo.FindImage(ctx, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load image")
	}

	if input.ImageURL != nil {
		url := strings.TrimSpace(*input.ImageURL)
		if url == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "image_url is required")
		}
		image.ImageURL = url
	}
	if input.AltText != nil {
		image.AltText = *input.AltText
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if input.IsPrimary != nil && *input.IsPrimary != image.IsPrimary {
			if *input.IsPrimary {
				if err := txRepo.ClearPrimary(ctx, image.ProductID, nil); err != nil {
					return err
				}
			}
			image.IsPrimary = *input.IsPrimary
		}
		return txRepo.SaveImage(ctx, image)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update image")
	}

	dto := NewImageDTO(image)
	return &dto, nil
}

// ReorderImages rewrites display positions to match orderedIDs. The list must
// cover exactly the product's live images.
func (s *service) ReorderImages(ctx context.Context, productID uuid.UUID, orderedIDs []uuid.UUID) ([]ImageDTO, error) {
	current, err := s.repo.ListImages(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list images")
	}
	if len(current) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product has no images")
	}
	if len(orderedIDs) != len(current) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image id list must cover all product images")
	}
	known := make(map[uuid.UUID]struct{}, len(current))
	for _, image := range current {
		known[image.ID] = struct{}{}
	}
	seen := make(map[uuid.UUID]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, ok := known[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown image id in order list")
		}
		if _, ok := seen[id]; ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate image id in order list")
		}
		seen[id] = struct{}{}
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		for index, id := range orderedIDs {
			if err := txRepo.SetImagePosition(ctx, id, index); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reorder images")
	}

	reordered, err := s.repo.ListImages(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list images")
	}
	result := make([]ImageDTO, 0, len(reordered))
	for i := range reordered {
		result = append(result, NewImageDTO(&reordered[i]))
	}
	return result, nil
}

// DeleteImage tombstones an image. Removing the primary hands the flag to the
// first remaining image.
func (s *service) DeleteImage(ctx context.Context, imageID uuid.UUID) error {
	image, err := s.repo.FindImage(ctx, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load image")
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.DeleteImage(ctx, imageID); err != nil {
			return err
		}
		if image.IsPrimary {
			return txRepo.PromoteFirstImage(ctx, image.ProductID)
		}
		return nil
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete image")
	}
	return nil
}

func (s *service) ensureActiveCategory(ctx context.Context, categoryID uuid.UUID) error {
	category, err := s.repo.FindCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	if !category.IsActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "category is not active")
	}
	return nil
}

func (s *service) loadDTO(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindDetailByID(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product detail")
	}
	return NewProductDTO(product), nil
}
