package models

import "github.com/google/uuid"

// Category is a node in the catalog hierarchy. The nested-set columns
// (lft, rgt, depth) place every subtree in a contiguous range so descendant
// and ancestor queries are single range predicates instead of recursive
// traversals.
type Category struct {
	Base
	Name        string     `gorm:"column:name;not null;index"`
	Slug        string     `gorm:"column:slug;not null;uniqueIndex"`
	Description string     `gorm:"column:description"`
	ImageURL    *string    `gorm:"column:image_url"`
	IsActive    bool       `gorm:"column:is_active;not null;index"`
	ParentID    *uuid.UUID `gorm:"column:parent_id;type:uuid;index"`

	Lft   int `gorm:"column:lft;not null;index"`
	Rgt   int `gorm:"column:rgt;not null;index"`
	Depth int `gorm:"column:depth;not null"`

	Children []Category `gorm:"foreignKey:ParentID"`
}

// ContainsRange reports whether other sits inside this category's subtree.
func (c Category) ContainsRange(other Category) bool {
	return other.Lft >= c.Lft && other.Rgt <= c.Rgt
}
