package categories

import (
	"context"
	"testing"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestInsertAssignsNestedSetRanges(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	tree := NewTreeStore(conn)

	electronics := mustInsert(t, tree, "Electronics", nil)
	phones := mustInsert(t, tree, "Phones", &electronics.ID)
	smartphones := mustInsert(t, tree, "Smartphones", &phones.ID)
	clothing := mustInsert(t, tree, "Clothing", nil)

	reload := func(id uuid.UUID) models.Category {
		var row models.Category
		if err := conn.First(&row, "id = ?", id).Error; err != nil {
			t.Fatalf("reload category: %v", err)
		}
		return row
	}

	e := reload(electronics.ID)
	p := reload(phones.ID)
	s := reload(smartphones.ID)
	c := reload(clothing.ID)

	if e.Lft != 1 || e.Rgt != 6 || e.Depth != 0 {
		t.Fatalf("unexpected electronics range: lft=%d rgt=%d depth=%d", e.Lft, e.Rgt, e.Depth)
	}
	if p.Lft != 2 || p.Rgt != 5 || p.Depth != 1 {
		t.Fatalf("unexpected phones range: lft=%d rgt=%d depth=%d", p.Lft, p.Rgt, p.Depth)
	}
	if s.Lft != 3 || s.Rgt != 4 || s.Depth != 2 {
		t.Fatalf("unexpected smartphones range: lft=%d rgt=%d depth=%d", s.Lft, s.Rgt, s.Depth)
	}
	if c.Lft != 7 || c.Rgt != 8 || c.Depth != 0 {
		t.Fatalf("unexpected clothing range: lft=%d rgt=%d depth=%d", c.Lft, c.Rgt, c.Depth)
	}

	if !e.ContainsRange(s) {
		t.Fatal("expected smartphones inside the electronics subtree")
	}
	if e.ContainsRange(c) {
		t.Fatal("expected clothing outside the electronics subtree")
	}
}

func TestAncestorsAndDescendants(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	tree := NewTreeStore(conn)
	ctx := context.Background()

	electronics := mustInsert(t, tree, "Electronics", nil)
	phones := mustInsert(t, tree, "Phones", &electronics.ID)
	smartphones := mustInsert(t, tree, "Smartphones", &phones.ID)
	mustInsert(t, tree, "Laptops", &electronics.ID)

	var leaf models.Category
	if err := conn.First(&leaf, "id = ?", smartphones.ID).Error; err != nil {
		t.Fatalf("reload leaf: %v", err)
	}

	ancestors, err := tree.Ancestors(ctx, leaf)
	if err != nil {
		t.Fatalf("ancestors: %v", err)
	}
	if len(ancestors) != 2 || ancestors[0].Name != "Electronics" || ancestors[1].Name != "Phones" {
		t.Fatalf("unexpected ancestor chain: %+v", ancestors)
	}

	var root models.Category
	if err := conn.First(&root, "id = ?", electronics.ID).Error; err != nil {
		t.Fatalf("reload root: %v", err)
	}

	descendants, err := tree.Descendants(ctx, root, false)
	if err != nil {
		t.Fatalf("descendants: %v", err)
	}
	if len(descendants) != 3 {
		t.Fatalf("expected 3 descendants, got %d", len(descendants))
	}

	withSelf, err := tree.Descendants(ctx, root, true)
	if err != nil {
		t.Fatalf("descendants with self: %v", err)
	}
	if len(withSelf) != 4 || withSelf[0].ID != electronics.ID {
		t.Fatalf("expected self-first subtree of 4, got %d", len(withSelf))
	}
}

func TestMoveRelocatesSubtree(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	tree := NewTreeStore(conn)
	ctx := context.Background()

	electronics := mustInsert(t, tree, "Electronics", nil)
	phones := mustInsert(t, tree, "Phones", &electronics.ID)
	smartphones := mustInsert(t, tree, "Smartphones", &phones.ID)
	outlet := mustInsert(t, tree, "Outlet", nil)

	if err := tree.Move(ctx, phones, &outlet.ID); err != nil {
		t.Fatalf("move phones under outlet: %v", err)
	}

	var movedPhones, movedSmart, oldRoot, newRoot models.Category
	for id, dst := range map[uuid.UUID]*models.Category{
		phones.ID:      &movedPhones,
		smartphones.ID: &movedSmart,
		electronics.ID: &oldRoot,
		outlet.ID:      &newRoot,
	} {
		if err := conn.First(dst, "id = ?", id).Error; err != nil {
			t.Fatalf("reload after move: %v", err)
		}
	}

	if movedPhones.ParentID == nil || *movedPhones.ParentID != outlet.ID {
		t.Fatalf("expected phones parent to be outlet, got %v", movedPhones.ParentID)
	}
	if !newRoot.ContainsRange(movedPhones) || !newRoot.ContainsRange(movedSmart) {
		t.Fatal("expected the moved subtree inside outlet's range")
	}
	if oldRoot.ContainsRange(movedPhones) {
		t.Fatal("expected phones outside electronics after the move")
	}
	if movedPhones.Depth != 1 || movedSmart.Depth != 2 {
		t.Fatalf("unexpected depths after move: phones=%d smartphones=%d", movedPhones.Depth, movedSmart.Depth)
	}
	if oldRoot.Rgt-oldRoot.Lft != 1 {
		t.Fatalf("expected electronics to be a leaf after the move, range [%d,%d]", oldRoot.Lft, oldRoot.Rgt)
	}
}

func TestMoveRejectsOwnSubtree(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	tree := NewTreeStore(conn)
	ctx := context.Background()

	electronics := mustInsert(t, tree, "Electronics", nil)
	phones := mustInsert(t, tree, "Phones", &electronics.ID)
	smartphones := mustInsert(t, tree, "Smartphones", &phones.ID)

	err := tree.Move(ctx, electronics, &smartphones.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	err = tree.Move(ctx, phones, &phones.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for self-parent, got %v", err)
	}
}

func TestRenumberingSpansTombstonedRows(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	tree := NewTreeStore(conn)

	electronics := mustInsert(t, tree, "Electronics", nil)
	phones := mustInsert(t, tree, "Phones", &electronics.ID)

	if err := conn.Delete(&models.Category{}, "id = ?", phones.ID).Error; err != nil {
		t.Fatalf("soft delete phones: %v", err)
	}

	laptops := mustInsert(t, tree, "Laptops", &electronics.ID)

	var deleted models.Category
	if err := conn.Unscoped().First(&deleted, "id = ?", phones.ID).Error; err != nil {
		t.Fatalf("reload tombstoned row: %v", err)
	}
	var live models.Category
	if err := conn.First(&live, "id = ?", laptops.ID).Error; err != nil {
		t.Fatalf("reload laptops: %v", err)
	}

	// No overlap between sibling ranges even though one is tombstoned.
	if live.Lft <= deleted.Rgt && deleted.Lft <= live.Rgt {
		t.Fatalf("sibling ranges overlap: deleted [%d,%d] live [%d,%d]",
			deleted.Lft, deleted.Rgt, live.Lft, live.Rgt)
	}
}

func mustInsert(t *testing.T, tree *TreeStore, name string, parentID *uuid.UUID) *models.Category {
	t.Helper()
	category := &models.Category{
		Name:     name,
		Slug:     uuid.NewString(),
		IsActive: true,
		ParentID: parentID,
	}
	if err := tree.Insert(context.Background(), category); err != nil {
		t.Fatalf("insert %s: %v", name, err)
	}
	return category
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:categories_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.ProductVariant{},
		&models.ProductImage{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}
