package models

import "github.com/google/uuid"

// ProductImage is a positioned product photo. At most one image per product
// carries the primary flag; the write paths enforce the handover.
type ProductImage struct {
	Base
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	ImageURL  string    `gorm:"column:image_url;not null"`
	AltText   string    `gorm:"column:alt_text"`
	Position  int       `gorm:"column:position;not null;default:0;index"`
	IsPrimary bool      `gorm:"column:is_primary;not null;default:false;index"`
}
