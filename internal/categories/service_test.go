package categories

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	svc, err := NewService(
		NewRepository(conn),
		NewTreeStore(conn),
		db.FromConn(conn),
		nil,
		logger.New(logger.Options{ServiceName: "categories-test", Output: io.Discard}),
		time.Minute,
	)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, conn
}

func TestCreateCategoryGeneratesUniqueSlugs(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Electronics", IsActive: true})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if first.Slug != "electronics" {
		t.Fatalf("unexpected slug %q", first.Slug)
	}

	// Tombstoned rows still hold their slug.
	if err := conn.Delete(&models.Category{}, "id = ?", first.ID).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	second, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Electronics", IsActive: true})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.Slug != "electronics-1" {
		t.Fatalf("expected suffixed slug, got %q", second.Slug)
	}
}

func TestCreateCategoryPersistsInactiveFlag(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Archive", IsActive: false})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var row models.Category
	if err := conn.First(&row, "id = ?", created.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if row.IsActive {
		t.Fatal("category created inactive was persisted as active")
	}
}

func TestCreateCategoryUnknownParent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	missing := uuid.New()

	_, err := svc.CreateCategory(context.Background(), CreateCategoryInput{
		Name:     "Orphan",
		IsActive: true,
		ParentID: &missing,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteCategoryWithProductsConflicts(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Phones", IsActive: true})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	product := &models.Product{
		Name:           "Test Phone",
		Slug:           "test-phone",
		CategoryID:     category.ID,
		BasePriceCents: 99900,
		IsActive:       true,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	err = svc.DeleteCategory(ctx, category.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDeleteCategoryCascadesToSubtree(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()

	root, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Electronics", IsActive: true})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	child, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Phones", IsActive: true, ParentID: &root.ID})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	if err := svc.DeleteCategory(ctx, root.ID); err != nil {
		t.Fatalf("delete root: %v", err)
	}

	var live int64
	if err := conn.Model(&models.Category{}).Count(&live).Error; err != nil {
		t.Fatalf("count live: %v", err)
	}
	if live != 0 {
		t.Fatalf("expected empty live set, got %d", live)
	}

	var tombstoned models.Category
	if err := conn.Unscoped().First(&tombstoned, "id = ?", child.ID).Error; err != nil {
		t.Fatalf("load tombstoned child: %v", err)
	}
	if !tombstoned.IsDeleted() {
		t.Fatal("expected child to carry a tombstone")
	}
}

func TestGetBySlugActiveOnly(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Hidden", IsActive: false})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.GetBySlug(ctx, created.Slug)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for inactive category, got %v", err)
	}
}

func TestGetTreeRollsUpProductCounts(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()

	root, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Electronics", IsActive: true})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	phones, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Phones", IsActive: true, ParentID: &root.ID})
	if err != nil {
		t.Fatalf("create phones: %v", err)
	}
	smart, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Smartphones", IsActive: true, ParentID: &phones.ID})
	if err != nil {
		t.Fatalf("create smartphones: %v", err)
	}

	seed := func(name string, categoryID uuid.UUID, active bool) {
		product := &models.Product{
			Name:           name,
			Slug:           name + "-" + uuid.NewString(),
			CategoryID:     categoryID,
			BasePriceCents: 1000,
			IsActive:       active,
		}
		if err := conn.Create(product).Error; err != nil {
			t.Fatalf("seed product %s: %v", name, err)
		}
	}
	seed("alpha", smart.ID, true)
	seed("beta", smart.ID, true)
	seed("gamma", phones.ID, true)
	seed("delta", phones.ID, false)

	tree, err := svc.GetTree(ctx, false)
	if err != nil {
		t.Fatalf("get tree: %v", err)
	}
	if len(tree) != 1 {
		t.Fatalf("expected single root, got %d", len(tree))
	}

	rootNode := tree[0]
	if rootNode.ProductCount != 3 {
		t.Fatalf("expected 3 active products under root, got %d", rootNode.ProductCount)
	}
	if len(rootNode.Children) != 1 || rootNode.Children[0].ProductCount != 3 {
		t.Fatalf("unexpected phones node: %+v", rootNode.Children)
	}
	smartNode := rootNode.Children[0].Children[0]
	if smartNode.ProductCount != 2 {
		t.Fatalf("expected 2 products on smartphones, got %d", smartNode.ProductCount)
	}
}

func TestGetTreeHiddenBranchCounts(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()

	root, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Electronics", IsActive: true})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	outlet, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Outlet", IsActive: false, ParentID: &root.ID})
	if err != nil {
		t.Fatalf("create outlet: %v", err)
	}
	clearance, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Clearance", IsActive: true, ParentID: &outlet.ID})
	if err != nil {
		t.Fatalf("create clearance: %v", err)
	}

	seed := func(name string, categoryID uuid.UUID) {
		product := &models.Product{
			Name:           name,
			Slug:           name + "-" + uuid.NewString(),
			CategoryID:     categoryID,
			BasePriceCents: 1000,
			IsActive:       true,
		}
		if err := conn.Create(product).Error; err != nil {
			t.Fatalf("seed product %s: %v", name, err)
		}
	}
	// Products directly on the hidden node are unreachable through the active
	// tree; the retained grandchild still rolls up.
	seed("hidden-only", outlet.ID)
	seed("bargain", clearance.ID)

	tree, err := svc.GetTree(ctx, false)
	if err != nil {
		t.Fatalf("get tree: %v", err)
	}
	if len(tree) != 1 {
		t.Fatalf("expected single root, got %d", len(tree))
	}
	rootNode := tree[0]
	if rootNode.ProductCount != 1 {
		t.Fatalf("expected only the clearance product on root, got %d", rootNode.ProductCount)
	}
	if len(rootNode.Children) != 1 || rootNode.Children[0].Slug != clearance.Slug {
		t.Fatalf("expected clearance to attach to root, got %+v", rootNode.Children)
	}
	if rootNode.Children[0].ProductCount != 1 {
		t.Fatalf("expected 1 product on clearance, got %d", rootNode.Children[0].ProductCount)
	}

	full, err := svc.GetTree(ctx, true)
	if err != nil {
		t.Fatalf("get full tree: %v", err)
	}
	if full[0].ProductCount != 2 {
		t.Fatalf("expected both products when inactive nodes are included, got %d", full[0].ProductCount)
	}
}

func TestFullPath(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	root, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Electronics", IsActive: true})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	phones, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Phones", IsActive: true, ParentID: &root.ID})
	if err != nil {
		t.Fatalf("create phones: %v", err)
	}
	smart, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Smartphones", IsActive: true, ParentID: &phones.ID})
	if err != nil {
		t.Fatalf("create smartphones: %v", err)
	}

	path, err := svc.FullPath(ctx, smart.ID)
	if err != nil {
		t.Fatalf("full path: %v", err)
	}
	if path != "Electronics > Phones > Smartphones" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestUpdateCategoryRejectsCircularParent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	root, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Electronics", IsActive: true})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	child, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Phones", IsActive: true, ParentID: &root.ID})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	_, err = svc.UpdateCategory(ctx, root.ID, UpdateCategoryInput{
		ParentID:  &child.ID,
		ParentSet: true,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
