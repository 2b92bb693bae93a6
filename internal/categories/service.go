package categories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/redis"
	"github.com/angelmondragon/catalog-backend/pkg/slug"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes category management and read operations.
type Service interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, categoryID uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, categoryID uuid.UUID) error
	GetBySlug(ctx context.Context, categorySlug string) (*CategoryDTO, error)
	GetTree(ctx context.Context, includeInactive bool) ([]TreeNodeDTO, error)
	FullPath(ctx context.Context, categoryID uuid.UUID) (string, error)
}

// CreateCategoryInput holds the validated payload to create a category.
type CreateCategoryInput struct {
	Name        string
	Description string
	ImageURL    *string
	IsActive    bool
	ParentID    *uuid.UUID
}

// UpdateCategoryInput holds optional mutation values for a category. ParentSet
// distinguishes "leave the parent alone" from "move to root" (ParentID nil).
type UpdateCategoryInput struct {
	Name        *string
	Description *string
	ImageURL    *string
	IsActive    *bool
	ParentID    *uuid.UUID
	ParentSet   bool
}

// service implements the category service.
type service struct {
	repo     *Repository
	tree     *TreeStore
	dbClient *db.Client
	cache    *redis.Client
	logg     *logger.Logger
	treeTTL  time.Duration
}

// NewService constructs a category service. cache may be nil; the tree read
// then always hits the database.
func NewService(repo *Repository, tree *TreeStore, dbClient *db.Client, cache *redis.Client, logg *logger.Logger, treeTTL time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if tree == nil {
		return nil, fmt.Errorf("tree store required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		tree:     tree,
		dbClient: dbClient,
		cache:    cache,
		logg:     logg,
		treeTTL:  treeTTL,
	}, nil
}

// CreateCategory inserts a category under the requested parent with a
// generated slug that never collides, soft-deleted rows included.
func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	categorySlug, err := slug.Unique(ctx, name, s.repo.SlugExists)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generate category slug")
	}

	category := &models.Category{
		Name:        name,
		Slug:        categorySlug,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		IsActive:    input.IsActive,
		ParentID:    input.ParentID,
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.tree.WithTx(tx).Insert(ctx, category)
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}

	s.invalidateTreeCache(ctx)
	return s.toDTOWithPath(ctx, category)
}

// UpdateCategory mutates category fields and relocates the subtree when a new
// parent is provided.
func (s *service) UpdateCategory(ctx context.Context, categoryID uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error) {
	category, err := s.repo.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if input.Name != nil {
			category.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			category.Description = *input.Description
		}
		if input.ImageURL != nil {
			category.ImageURL = input.ImageURL
		}
		if input.IsActive != nil {
			category.IsActive = *input.IsActive
		}
		if err := txRepo.Save(ctx, category); err != nil {
			return err
		}

		if input.ParentSet && !sameParent(category.ParentID, input.ParentID) {
			if err := s.tree.WithTx(tx).Move(ctx, category, input.ParentID); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}

	s.invalidateTreeCache(ctx)

	updated, err := s.repo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload category")
	}
	return s.toDTOWithPath(ctx, updated)
}

// DeleteCategory tombstones the category and its whole subtree. Categories
// that still hold products cannot be deleted.
func (s *service) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	category, err := s.repo.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	productCount, err := s.repo.CountDirectProducts(ctx, categoryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
	}
	if productCount > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category has products").
			WithDetails(map[string]any{"product_count": productCount})
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txTree := s.tree.WithTx(tx)
		subtree, err := txTree.Descendants(ctx, *category, true)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(subtree))
		for i, node := range subtree {
			ids[i] = node.ID
		}
		return s.repo.WithTx(tx).SoftDeleteByIDs(ctx, ids)
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category subtree")
	}

	s.invalidateTreeCache(ctx)
	return nil
}

// GetBySlug returns an active category by its slug.
func (s *service) GetBySlug(ctx context.Context, categorySlug string) (*CategoryDTO, error) {
	category, err := s.repo.FindActiveBySlug(ctx, categorySlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return s.toDTOWithPath(ctx, category)
}

// GetTree returns the nested category tree with active-product counts per
// subtree. The active-only tree is served from Redis when a cache is wired.
func (s *service) GetTree(ctx context.Context, includeInactive bool) ([]TreeNodeDTO, error) {
	cacheKey := s.treeCacheKey(includeInactive)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey)
		if err == nil {
			var nodes []TreeNodeDTO
			if jsonErr := json.Unmarshal([]byte(cached), &nodes); jsonErr == nil {
				return nodes, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logg.Warn(ctx, "category tree cache read failed: "+err.Error())
		}
	}

	rows, err := s.repo.ListAll(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	counts, err := s.repo.ActiveProductCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
	}

	nodes := buildTree(rows, counts)

	if s.cache != nil {
		payload, err := json.Marshal(nodes)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(payload), s.treeTTL); err != nil {
				s.logg.Warn(ctx, "category tree cache write failed: "+err.Error())
			}
		}
	}
	return nodes, nil
}

// FullPath renders the root-to-node breadcrumb, e.g. "Electronics > Phones".
func (s *service) FullPath(ctx context.Context, categoryID uuid.UUID) (string, error) {
	category, err := s.repo.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return s.fullPathFor(ctx, category)
}

func (s *service) fullPathFor(ctx context.Context, category *models.Category) (string, error) {
	ancestors, err := s.tree.Ancestors(ctx, *category)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category ancestors")
	}
	parts := make([]string, 0, len(ancestors)+1)
	for _, ancestor := range ancestors {
		parts = append(parts, ancestor.Name)
	}
	parts = append(parts, category.Name)
	return strings.Join(parts, " > "), nil
}

func (s *service) toDTOWithPath(ctx context.Context, category *models.Category) (*CategoryDTO, error) {
	dto := NewCategoryDTO(category)
	path, err := s.fullPathFor(ctx, category)
	if err != nil {
		return nil, err
	}
	dto.FullPath = path
	return dto, nil
}

func (s *service) treeCacheKey(includeInactive bool) string {
	scope := "active"
	if includeInactive {
		scope = "all"
	}
	if s.cache != nil {
		return s.cache.CacheKey("category_tree", scope)
	}
	return "category_tree:" + scope
}

func (s *service) invalidateTreeCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	keys := []string{s.treeCacheKey(false), s.treeCacheKey(true)}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.logg.Warn(ctx, "category tree cache invalidation failed: "+err.Error())
	}
}

// buildTree nests the lft-ordered rows and rolls product counts up each
// subtree. Children of rows filtered out upstream attach to their nearest
// retained ancestor and keep contributing their counts; products attached
// directly to a filtered-out row are not browsable through the tree and are
// excluded from every roll-up.
func buildTree(rows []models.Category, counts map[uuid.UUID]int) []TreeNodeDTO {
	roots := make([]TreeNodeDTO, 0)

	type frame struct {
		node *TreeNodeDTO
		rgt  int
	}
	stack := make([]frame, 0, 8)

	pop := func() {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(stack) > 0 {
			stack[len(stack)-1].node.ProductCount += top.node.ProductCount
		}
	}

	for _, row := range rows {
		for len(stack) > 0 && row.Lft > stack[len(stack)-1].rgt {
			pop()
		}

		node := TreeNodeDTO{
			ID:           row.ID,
			Name:         row.Name,
			Slug:         row.Slug,
			ImageURL:     row.ImageURL,
			IsActive:     row.IsActive,
			Depth:        row.Depth,
			ProductCount: counts[row.ID],
			Children:     []TreeNodeDTO{},
		}

		if len(stack) == 0 {
			roots = append(roots, node)
			stack = append(stack, frame{node: &roots[len(roots)-1], rgt: row.Rgt})
			continue
		}

		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, node)
		stack = append(stack, frame{node: &parent.Children[len(parent.Children)-1], rgt: row.Rgt})
	}
	for len(stack) > 0 {
		pop()
	}
	return roots
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
