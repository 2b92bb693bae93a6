package models

import "github.com/google/uuid"

// Product is the canonical catalog listing. Pricing is stored in integer
// cents; variants may override the base price per purchasable combination.
type Product struct {
	Base
	Name            string    `gorm:"column:name;not null;index"`
	Slug            string    `gorm:"column:slug;not null;uniqueIndex"`
	Description     string    `gorm:"column:description"`
	CategoryID      uuid.UUID `gorm:"column:category_id;type:uuid;not null;index"`
	BasePriceCents  int64     `gorm:"column:base_price_cents;not null"`
	IsActive        bool      `gorm:"column:is_active;not null;index"`
	IsFeatured      bool      `gorm:"column:is_featured;not null;default:false;index"`
	MetaTitle       string    `gorm:"column:meta_title"`
	MetaDescription string    `gorm:"column:meta_description"`

	Category *Category        `gorm:"foreignKey:CategoryID"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID"`
	Images   []ProductImage   `gorm:"foreignKey:ProductID"`
}
