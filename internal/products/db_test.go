package products

import (
	"context"
	"io"
	"testing"

	"github.com/angelmondragon/catalog-backend/internal/categories"
	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.ProductVariant{},
		&models.ProductAttribute{},
		&models.ProductAttributeValue{},
		&models.VariantAttributeValue{},
		&models.ProductImage{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	svc, err := NewService(
		NewRepository(conn),
		db.FromConn(conn),
		logger.New(logger.Options{ServiceName: "products-test", Output: io.Discard}),
	)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, conn
}

func mustCategory(t *testing.T, conn *gorm.DB, name string, parentID *uuid.UUID) *models.Category {
	t.Helper()
	category := &models.Category{
		Name:     name,
		Slug:     name + "-" + uuid.NewString()[:8],
		IsActive: true,
		ParentID: parentID,
	}
	if err := categories.NewTreeStore(conn).Insert(context.Background(), category); err != nil {
		t.Fatalf("insert category %s: %v", name, err)
	}
	return category
}

type productSeed struct {
	Name        string
	Description string
	CategoryID  uuid.UUID
	PriceCents  int64
	IsActive    bool
	IsFeatured  bool
}

func mustProduct(t *testing.T, conn *gorm.DB, seed productSeed) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:           seed.Name,
		Slug:           seed.Name + "-" + uuid.NewString()[:8],
		Description:    seed.Description,
		CategoryID:     seed.CategoryID,
		BasePriceCents: seed.PriceCents,
		IsActive:       seed.IsActive,
		IsFeatured:     seed.IsFeatured,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product %s: %v", seed.Name, err)
	}
	return product
}

func mustVariant(t *testing.T, conn *gorm.DB, productID uuid.UUID, sku string, priceCents *int64, stock int) *models.ProductVariant {
	t.Helper()
	variant := &models.ProductVariant{
		ProductID:         productID,
		SKU:               sku,
		Name:              sku,
		PriceCents:        priceCents,
		StockQuantity:     stock,
		LowStockThreshold: 5,
		IsActive:          true,
	}
	if err := conn.Create(variant).Error; err != nil {
		t.Fatalf("seed variant %s: %v", sku, err)
	}
	return variant
}

func int64Ptr(v int64) *int64 { return &v }
