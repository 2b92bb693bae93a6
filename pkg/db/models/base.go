package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the identity, timestamps, and soft-delete tombstone shared by
// every catalog entity. Default reads exclude tombstoned rows; audit paths go
// through Unscoped.
type Base struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// BeforeCreate assigns a UUID primary key when the caller did not.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// IsDeleted reports whether the row carries a tombstone.
func (b *Base) IsDeleted() bool {
	return b.DeletedAt.Valid
}
