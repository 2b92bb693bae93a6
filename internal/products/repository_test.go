package products

import (
	"context"
	"testing"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
	"github.com/google/uuid"
)

func TestListProductsPriceRangeMatchesBaseOrVariant(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	category := mustCategory(t, conn, "Electronics", nil)
	flagship := mustProduct(t, conn, productSeed{
		Name: "Flagship Phone", CategoryID: category.ID, PriceCents: 99999, IsActive: true,
	})
	mustVariant(t, conn, flagship.ID, "FLAG-LITE", int64Ptr(89999), 10)
	mustVariant(t, conn, flagship.ID, "FLAG-PRO", int64Ptr(109999), 5)
	budget := mustProduct(t, conn, productSeed{
		Name: "Budget Phone", CategoryID: category.ID, PriceCents: 4999, IsActive: true,
	})

	// min 1000.00 only matches the flagship through its 1099.99 variant.
	highMin := int64(100000)
	result, err := repo.ListProducts(ctx, ListInput{Filters: ListFilters{PriceMinCents: &highMin}})
	if err != nil {
		t.Fatalf("list with min: %v", err)
	}
	if len(result.Products) != 1 || result.Products[0].ID != flagship.ID {
		t.Fatalf("expected only the flagship, got %+v", result.Products)
	}

	// max 900.00 matches the flagship through its 899.99 variant and the
	// budget phone through its base price.
	lowMax := int64(90000)
	result, err = repo.ListProducts(ctx, ListInput{Filters: ListFilters{PriceMaxCents: &lowMax}})
	if err != nil {
		t.Fatalf("list with max: %v", err)
	}
	if len(result.Products) != 2 {
		t.Fatalf("expected both products, got %+v", result.Products)
	}
	matched := map[uuid.UUID]bool{}
	for _, item := range result.Products {
		matched[item.ID] = true
	}
	if !matched[flagship.ID] || !matched[budget.ID] {
		t.Fatalf("expected flagship and budget phones, got %+v", result.Products)
	}

	// A window neither product reaches.
	min, max := int64(200000), int64(300000)
	result, err = repo.ListProducts(ctx, ListInput{Filters: ListFilters{PriceMinCents: &min, PriceMaxCents: &max}})
	if err != nil {
		t.Fatalf("list with window: %v", err)
	}
	if len(result.Products) != 0 {
		t.Fatalf("expected empty result, got %+v", result.Products)
	}
}

func TestListProductsCategorySubtree(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	electronics := mustCategory(t, conn, "Electronics", nil)
	phones := mustCategory(t, conn, "Phones", &electronics.ID)
	clothing := mustCategory(t, conn, "Clothing", nil)

	inSubtree := mustProduct(t, conn, productSeed{
		Name: "Phone", CategoryID: phones.ID, PriceCents: 1000, IsActive: true,
	})
	mustProduct(t, conn, productSeed{
		Name: "Shirt", CategoryID: clothing.ID, PriceCents: 2000, IsActive: true,
	})

	result, err := repo.ListProducts(ctx, ListInput{Filters: ListFilters{CategorySlug: electronics.Slug}})
	if err != nil {
		t.Fatalf("list by subtree: %v", err)
	}
	if len(result.Products) != 1 || result.Products[0].ID != inSubtree.ID {
		t.Fatalf("expected only the phone, got %+v", result.Products)
	}

	result, err = repo.ListProducts(ctx, ListInput{Filters: ListFilters{CategorySlug: "does-not-exist"}})
	if err != nil {
		t.Fatalf("list unknown slug: %v", err)
	}
	if len(result.Products) != 0 || result.Pagination.TotalItems != 0 {
		t.Fatalf("expected empty result for unknown slug, got %+v", result)
	}
}

func TestListProductsAttributeFilterIsConjunctive(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	category := mustCategory(t, conn, "Apparel", nil)
	shirt := mustProduct(t, conn, productSeed{
		Name: "Shirt", CategoryID: category.ID, PriceCents: 2500, IsActive: true,
	})

	color := &models.ProductAttribute{Name: "Color"}
	size := &models.ProductAttribute{Name: "Size"}
	for _, attribute := range []*models.ProductAttribute{color, size} {
		if err := conn.Create(attribute).Error; err != nil {
			t.Fatalf("seed attribute: %v", err)
		}
	}
	red := &models.ProductAttributeValue{AttributeID: color.ID, Value: "Red"}
	blue := &models.ProductAttributeValue{AttributeID: color.ID, Value: "Blue"}
	large := &models.ProductAttributeValue{AttributeID: size.ID, Value: "Large"}
	for _, value := range []*models.ProductAttributeValue{red, blue, large} {
		if err := conn.Create(value).Error; err != nil {
			t.Fatalf("seed value: %v", err)
		}
	}

	variant := mustVariant(t, conn, shirt.ID, "SHIRT-RED-L", nil, 3)
	for _, valueID := range []uuid.UUID{red.ID, large.ID} {
		link := &models.VariantAttributeValue{VariantID: variant.ID, AttributeValueID: valueID}
		if err := conn.Create(link).Error; err != nil {
			t.Fatalf("seed link: %v", err)
		}
	}

	result, err := repo.ListProducts(ctx, ListInput{
		Filters: ListFilters{AttributeValueIDs: []uuid.UUID{red.ID, large.ID}},
	})
	if err != nil {
		t.Fatalf("list red+large: %v", err)
	}
	if len(result.Products) != 1 {
		t.Fatalf("expected the shirt for red+large, got %+v", result.Products)
	}

	result, err = repo.ListProducts(ctx, ListInput{
		Filters: ListFilters{AttributeValueIDs: []uuid.UUID{red.ID, blue.ID}},
	})
	if err != nil {
		t.Fatalf("list red+blue: %v", err)
	}
	if len(result.Products) != 0 {
		t.Fatalf("expected no match for red+blue, got %+v", result.Products)
	}
}

func TestListProductsAttributeFilterNeedsActiveVariant(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	category := mustCategory(t, conn, "Apparel", nil)
	shirt := mustProduct(t, conn, productSeed{
		Name: "Shirt", CategoryID: category.ID, PriceCents: 2500, IsActive: true,
	})

	color := &models.ProductAttribute{Name: "Color"}
	if err := conn.Create(color).Error; err != nil {
		t.Fatalf("seed attribute: %v", err)
	}
	red := &models.ProductAttributeValue{AttributeID: color.ID, Value: "Red"}
	if err := conn.Create(red).Error; err != nil {
		t.Fatalf("seed value: %v", err)
	}

	retired := mustVariant(t, conn, shirt.ID, "SHIRT-RED-RETIRED", nil, 3)
	if err := conn.Model(retired).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate variant: %v", err)
	}
	link := &models.VariantAttributeValue{VariantID: retired.ID, AttributeValueID: red.ID}
	if err := conn.Create(link).Error; err != nil {
		t.Fatalf("seed link: %v", err)
	}

	result, err := repo.ListProducts(ctx, ListInput{
		Filters: ListFilters{AttributeValueIDs: []uuid.UUID{red.ID}},
	})
	if err != nil {
		t.Fatalf("list red: %v", err)
	}
	if len(result.Products) != 0 {
		t.Fatalf("expected no products when only an inactive variant carries the value, got %+v", result.Products)
	}

	if err := conn.Model(retired).Update("is_active", true).Error; err != nil {
		t.Fatalf("reactivate variant: %v", err)
	}
	result, err = repo.ListProducts(ctx, ListInput{
		Filters: ListFilters{AttributeValueIDs: []uuid.UUID{red.ID}},
	})
	if err != nil {
		t.Fatalf("list red again: %v", err)
	}
	if len(result.Products) != 1 {
		t.Fatalf("expected the shirt once its variant is active again, got %+v", result.Products)
	}
}

func TestListProductsSearch(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	category := mustCategory(t, conn, "Electronics", nil)
	byName := mustProduct(t, conn, productSeed{
		Name: "Galaxy Phone", CategoryID: category.ID, PriceCents: 1000, IsActive: true,
	})
	byDescription := mustProduct(t, conn, productSeed{
		Name: "Tablet", Description: "A galaxy of features", CategoryID: category.ID, PriceCents: 1000, IsActive: true,
	})
	bySKU := mustProduct(t, conn, productSeed{
		Name: "Laptop", CategoryID: category.ID, PriceCents: 1000, IsActive: true,
	})
	mustVariant(t, conn, bySKU.ID, "GALAXY-BOOK-15", nil, 1)
	mustProduct(t, conn, productSeed{
		Name: "Desk", CategoryID: category.ID, PriceCents: 1000, IsActive: true,
	})

	result, err := repo.ListProducts(ctx, ListInput{Filters: ListFilters{Query: "gAlAxY"}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Products) != 3 {
		t.Fatalf("expected 3 matches, got %+v", result.Products)
	}
	found := map[uuid.UUID]bool{}
	for _, item := range result.Products {
		found[item.ID] = true
	}
	for _, want := range []uuid.UUID{byName.ID, byDescription.ID, bySKU.ID} {
		if !found[want] {
			t.Fatalf("missing expected product %s in %v", want, result.Products)
		}
	}
}

func TestListProductsStockAndFeaturedFilters(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	category := mustCategory(t, conn, "Electronics", nil)
	stocked := mustProduct(t, conn, productSeed{
		Name: "Stocked", CategoryID: category.ID, PriceCents: 1000, IsActive: true, IsFeatured: true,
	})
	mustVariant(t, conn, stocked.ID, "STOCKED-1", nil, 4)
	empty := mustProduct(t, conn, productSeed{
		Name: "Empty", CategoryID: category.ID, PriceCents: 1000, IsActive: true,
	})
	mustVariant(t, conn, empty.ID, "EMPTY-1", nil, 0)
	mustProduct(t, conn, productSeed{
		Name: "No Variants", CategoryID: category.ID, PriceCents: 1000, IsActive: true,
	})

	result, err := repo.ListProducts(ctx, ListInput{Filters: ListFilters{InStockOnly: true}})
	if err != nil {
		t.Fatalf("in stock: %v", err)
	}
	if len(result.Products) != 1 || result.Products[0].ID != stocked.ID {
		t.Fatalf("expected only the stocked product, got %+v", result.Products)
	}

	result, err = repo.ListProducts(ctx, ListInput{Filters: ListFilters{FeaturedOnly: true}})
	if err != nil {
		t.Fatalf("featured: %v", err)
	}
	if len(result.Products) != 1 || result.Products[0].ID != stocked.ID {
		t.Fatalf("expected only the featured product, got %+v", result.Products)
	}
}

func TestListProductsExcludesInactiveAndDeleted(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	category := mustCategory(t, conn, "Electronics", nil)
	visible := mustProduct(t, conn, productSeed{
		Name: "Visible", CategoryID: category.ID, PriceCents: 1000, IsActive: true,
	})
	mustProduct(t, conn, productSeed{
		Name: "Hidden", CategoryID: category.ID, PriceCents: 1000, IsActive: false,
	})
	deleted := mustProduct(t, conn, productSeed{
		Name: "Deleted", CategoryID: category.ID, PriceCents: 1000, IsActive: true,
	})
	if err := conn.Delete(&models.Product{}, "id = ?", deleted.ID).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	result, err := repo.ListProducts(ctx, ListInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Products) != 1 || result.Products[0].ID != visible.ID {
		t.Fatalf("expected only the visible product, got %+v", result.Products)
	}
}

func TestListProductsSortByPrice(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	category := mustCategory(t, conn, "Electronics", nil)
	mid := mustProduct(t, conn, productSeed{Name: "Mid", CategoryID: category.ID, PriceCents: 5000, IsActive: true})
	cheap := mustProduct(t, conn, productSeed{Name: "Cheap", CategoryID: category.ID, PriceCents: 1000, IsActive: true})
	pricey := mustProduct(t, conn, productSeed{Name: "Pricey", CategoryID: category.ID, PriceCents: 9000, IsActive: true})

	result, err := repo.ListProducts(ctx, ListInput{
		SortField: enums.ProductSortPrice,
		SortOrder: enums.SortAsc,
	})
	if err != nil {
		t.Fatalf("sort asc: %v", err)
	}
	got := []uuid.UUID{result.Products[0].ID, result.Products[1].ID, result.Products[2].ID}
	want := []uuid.UUID{cheap.ID, mid.ID, pricey.ID}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order at %d: got %v want %v", i, got, want)
		}
	}
}

func TestListProductsPagination(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	category := mustCategory(t, conn, "Electronics", nil)
	for i := 0; i < 5; i++ {
		mustProduct(t, conn, productSeed{
			Name: "Item", CategoryID: category.ID, PriceCents: int64(1000 + i), IsActive: true,
		})
	}

	result, err := repo.ListProducts(ctx, ListInput{
		Pagination: pagination.Params{Page: 2, PageSize: 2},
	})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(result.Products) != 2 {
		t.Fatalf("expected 2 items on page 2, got %d", len(result.Products))
	}
	if result.Pagination.TotalItems != 5 || result.Pagination.TotalPages != 3 {
		t.Fatalf("unexpected totals: %+v", result.Pagination)
	}
	if !result.Pagination.HasNext || !result.Pagination.HasPrev {
		t.Fatalf("expected both page links: %+v", result.Pagination)
	}

	// Beyond the last page: empty list, not an error.
	result, err = repo.ListProducts(ctx, ListInput{
		Pagination: pagination.Params{Page: 9, PageSize: 2},
	})
	if err != nil {
		t.Fatalf("page 9: %v", err)
	}
	if len(result.Products) != 0 || result.Pagination.HasNext {
		t.Fatalf("expected empty overflow page, got %+v", result)
	}

	// Oversized page sizes clamp to the cap.
	result, err = repo.ListProducts(ctx, ListInput{
		Pagination: pagination.Params{Page: 1, PageSize: 500},
	})
	if err != nil {
		t.Fatalf("oversized page: %v", err)
	}
	if result.Pagination.PageSize != pagination.MaxPageSize {
		t.Fatalf("expected clamped page size, got %d", result.Pagination.PageSize)
	}
}
