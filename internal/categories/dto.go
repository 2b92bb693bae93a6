package categories

import (
	"time"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/google/uuid"
)

// CategoryDTO represents a single category payload returned to clients.
type CategoryDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty"`
	IsActive    bool       `json:"is_active"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Depth       int        `json:"depth"`
	FullPath    string     `json:"full_path,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TreeNodeDTO is a category with its nested children and the number of
// active products in its entire subtree.
type TreeNodeDTO struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	Slug         string        `json:"slug"`
	ImageURL     *string       `json:"image_url,omitempty"`
	IsActive     bool          `json:"is_active"`
	Depth        int           `json:"depth"`
	ProductCount int           `json:"product_count"`
	Children     []TreeNodeDTO `json:"children"`
}

// NewCategoryDTO builds a DTO from the persisted model.
func NewCategoryDTO(category *models.Category) *CategoryDTO {
	return &CategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
		ImageURL:    category.ImageURL,
		IsActive:    category.IsActive,
		ParentID:    category.ParentID,
		Depth:       category.Depth,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}
