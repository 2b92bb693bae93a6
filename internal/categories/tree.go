package categories

import (
	"context"
	"errors"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TreeStore maintains the nested-set columns on categories. Every structural
// mutation runs inside the caller's transaction and renumbers with Unscoped so
// tombstoned rows keep coherent ranges.
type TreeStore struct {
	db *gorm.DB
}

// NewTreeStore builds a tree store over the provided GORM DB.
func NewTreeStore(db *gorm.DB) *TreeStore {
	return &TreeStore{db: db}
}

// WithTx returns a tree store bound to the provided transaction.
func (t *TreeStore) WithTx(tx *gorm.DB) *TreeStore {
	return &TreeStore{db: tx}
}

// Insert assigns nested-set coordinates to category and creates the row.
// With a parent the node lands as the parent's last child; without one it is
// appended after the rightmost root.
func (t *TreeStore) Insert(ctx context.Context, category *models.Category) error {
	tx := t.db.WithContext(ctx)

	if category.ParentID == nil {
		maxRgt, err := t.maxRgt(ctx)
		if err != nil {
			return err
		}
		category.Lft = maxRgt + 1
		category.Rgt = maxRgt + 2
		category.Depth = 0
		return tx.Create(category).Error
	}

	parent, err := t.findParent(ctx, *category.ParentID)
	if err != nil {
		return err
	}

	// Open a 2-wide gap at the parent's closing bound.
	if err := tx.Unscoped().Model(&models.Category{}).
		Where("rgt >= ?", parent.Rgt).
		UpdateColumn("rgt", gorm.Expr("rgt + 2")).Error; err != nil {
		return err
	}
	if err := tx.Unscoped().Model(&models.Category{}).
		Where("lft > ?", parent.Rgt).
		UpdateColumn("lft", gorm.Expr("lft + 2")).Error; err != nil {
		return err
	}

	category.Lft = parent.Rgt
	category.Rgt = parent.Rgt + 1
	category.Depth = parent.Depth + 1
	return tx.Create(category).Error
}

// Move relocates category (and its whole subtree) under newParentID, or to
// the root level when newParentID is nil. Moving a node into its own subtree
// is rejected.
func (t *TreeStore) Move(ctx context.Context, category *models.Category, newParentID *uuid.UUID) error {
	tx := t.db.WithContext(ctx)

	node, err := t.findAny(ctx, category.ID)
	if err != nil {
		return err
	}
	lft, rgt, depth := node.Lft, node.Rgt, node.Depth
	width := rgt - lft + 1

	var newDepth int
	if newParentID != nil {
		if *newParentID == category.ID {
			return pkgerrors.New(pkgerrors.CodeValidation, "category cannot be its own parent")
		}
		parent, err := t.findParent(ctx, *newParentID)
		if err != nil {
			return err
		}
		if parent.Lft >= lft && parent.Rgt <= rgt {
			return pkgerrors.New(pkgerrors.CodeValidation, "cannot move category inside its own subtree")
		}
		newDepth = parent.Depth + 1
	}

	// Park the subtree in negative space so the gap math never touches it.
	if err := tx.Unscoped().Model(&models.Category{}).
		Where("lft >= ? AND rgt <= ?", lft, rgt).
		UpdateColumns(map[string]any{
			"lft": gorm.Expr("-lft"),
			"rgt": gorm.Expr("-rgt"),
		}).Error; err != nil {
		return err
	}

	// Close the gap the subtree left behind.
	if err := tx.Unscoped().Model(&models.Category{}).
		Where("lft > ?", rgt).
		UpdateColumn("lft", gorm.Expr("lft - ?", width)).Error; err != nil {
		return err
	}
	if err := tx.Unscoped().Model(&models.Category{}).
		Where("rgt > ?", rgt).
		UpdateColumn("rgt", gorm.Expr("rgt - ?", width)).Error; err != nil {
		return err
	}

	var newLft int
	if newParentID == nil {
		maxRgt, err := t.maxRgt(ctx)
		if err != nil {
			return err
		}
		newLft = maxRgt + 1
		newDepth = 0
	} else {
		// Bounds shifted while closing the gap, so re-read the parent.
		parent, err := t.findParent(ctx, *newParentID)
		if err != nil {
			return err
		}
		newLft = parent.Rgt
	}

	// Open a gap at the destination.
	if err := tx.Unscoped().Model(&models.Category{}).
		Where("lft >= ?", newLft).
		UpdateColumn("lft", gorm.Expr("lft + ?", width)).Error; err != nil {
		return err
	}
	if err := tx.Unscoped().Model(&models.Category{}).
		Where("rgt >= ?", newLft).
		UpdateColumn("rgt", gorm.Expr("rgt + ?", width)).Error; err != nil {
		return err
	}

	// Bring the parked subtree into the gap, adjusting depth as it lands.
	offset := newLft - lft
	depthDelta := newDepth - depth
	if err := tx.Unscoped().Model(&models.Category{}).
		Where("lft < 0").
		UpdateColumns(map[string]any{
			"lft":   gorm.Expr("-lft + ?", offset),
			"rgt":   gorm.Expr("-rgt + ?", offset),
			"depth": gorm.Expr("depth + ?", depthDelta),
		}).Error; err != nil {
		return err
	}

	return tx.Unscoped().Model(&models.Category{}).
		Where("id = ?", category.ID).
		UpdateColumn("parent_id", newParentID).Error
}

// Ancestors returns the chain from root to the node's direct parent, ordered
// root first.
func (t *TreeStore) Ancestors(ctx context.Context, category models.Category) ([]models.Category, error) {
	var rows []models.Category
	err := t.db.WithContext(ctx).
		Where("lft < ? AND rgt > ?", category.Lft, category.Rgt).
		Order("lft ASC").
		Find(&rows).Error
	return rows, err
}

// Descendants returns the subtree rows in lft order. includeSelf keeps the
// node itself in the result.
func (t *TreeStore) Descendants(ctx context.Context, category models.Category, includeSelf bool) ([]models.Category, error) {
	qb := t.db.WithContext(ctx).Order("lft ASC")
	if includeSelf {
		qb = qb.Where("lft >= ? AND rgt <= ?", category.Lft, category.Rgt)
	} else {
		qb = qb.Where("lft > ? AND rgt < ?", category.Lft, category.Rgt)
	}
	var rows []models.Category
	err := qb.Find(&rows).Error
	return rows, err
}

func (t *TreeStore) maxRgt(ctx context.Context) (int, error) {
	var max *int
	err := t.db.WithContext(ctx).Unscoped().Model(&models.Category{}).
		Select("MAX(rgt)").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// findAny loads a category regardless of tombstone state. Renumbering has to
// see deleted rows.
func (t *TreeStore) findAny(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := t.db.WithContext(ctx).Unscoped().First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (t *TreeStore) findParent(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	parent, err := t.findAny(ctx, id)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "parent category not found")
		}
		return nil, err
	}
	return parent, nil
}
