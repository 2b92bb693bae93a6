package variants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Service exposes variant management and inventory operations.
type Service interface {
	CreateVariant(ctx context.Context, productID uuid.UUID, input CreateVariantInput) (*VariantDTO, error)
	UpdateVariant(ctx context.Context, variantID uuid.UUID, input UpdateVariantInput) (*VariantDTO, error)
	DeleteVariant(ctx context.Context, variantID uuid.UUID) error
	GetVariant(ctx context.Context, variantID uuid.UUID) (*VariantDTO, error)
	UpdateStock(ctx context.Context, variantID uuid.UUID, operation string, quantity int) (*VariantDTO, error)
	BulkUpdateStock(ctx context.Context, updates []StockUpdate) (*BulkStockSummary, error)
	LowStockVariants(ctx context.Context) ([]VariantDTO, error)
}

// CreateVariantInput holds the validated payload to create a variant.
type CreateVariantInput struct {
	SKU               string
	Name              string
	PriceCents        *int64
	StockQuantity     int
	LowStockThreshold *int
	WeightGrams       *float64
	Length            *float64
	Width             *float64
	Height            *float64
	IsActive          bool
	AttributeValueIDs []uuid.UUID
}

// UpdateVariantInput holds optional mutation values for a variant. A non-nil
// AttributeValueIDs replaces the whole set; an empty slice clears it.
type UpdateVariantInput struct {
	SKU               *string
	Name              *string
	PriceCents        *int64
	PriceSet          bool
	LowStockThreshold *int
	WeightGrams       *float64
	Length            *float64
	Width             *float64
	Height            *float64
	IsActive          *bool
	AttributeValueIDs *[]uuid.UUID
}

// StockUpdate is one entry in a bulk stock mutation.
type StockUpdate struct {
	VariantID uuid.UUID `json:"variant_id"`
	Operation string    `json:"operation"`
	Quantity  int       `json:"quantity"`
}

// service implements the variant service.
type service struct {
	repo     *Repository
	ledger   *Ledger
	dbClient *db.Client
	logg     *logger.Logger
}

// NewService constructs a variant service instance.
func NewService(repo *Repository, ledger *Ledger, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("variant repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, ledger: ledger, dbClient: dbClient, logg: logg}, nil
}

// CreateVariant inserts a variant under the product with its attribute links.
func (s *service) CreateVariant(ctx context.Context, productID uuid.UUID, input CreateVariantInput) (*VariantDTO, error) {
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if input.StockQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
	}

	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	taken, err := s.repo.SKUExists(ctx, sku, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sku")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate sku")
	}

	variant := &models.ProductVariant{
		ProductID:     product.ID,
		SKU:           sku,
		Name:          strings.TrimSpace(input.Name),
		PriceCents:    input.PriceCents,
		StockQuantity: input.StockQuantity,
		IsActive:      input.IsActive,
		WeightGrams:   input.WeightGrams,
		Length:        input.Length,
		Width:         input.Width,
		Height:        input.Height,
	}
	if input.LowStockThreshold != nil {
		if *input.LowStockThreshold < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "low_stock_threshold must be non-negative")
		}
		variant.LowStockThreshold = *input.LowStockThreshold
	} else {
		variant.LowStockThreshold = 5
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Create(ctx, variant); err != nil {
			// SKUExists ran outside the tx; a concurrent insert can still trip
			// the unique index.
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeValidation, "duplicate sku")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert variant")
		}
		known, err := s.resolveAttributeValues(ctx, txRepo, variant.ID, input.AttributeValueIDs)
		if err != nil {
			return err
		}
		if len(known) > 0 {
			if err := txRepo.ReplaceAttributeValues(ctx, variant.ID, known); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: link attribute values")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create variant")
	}

	return s.loadDTO(ctx, variant.ID)
}

// UpdateVariant mutates variant fields and, when provided, replaces the
// attribute-value set.
func (s *service) UpdateVariant(ctx context.Context, variantID uuid.UUID, input UpdateVariantInput) (*VariantDTO, error) {
	variant, err := s.repo.FindByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}

	if input.SKU != nil {
		sku := strings.TrimSpace(*input.SKU)
		if sku == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
		}
		if sku != variant.SKU {
			taken, err := s.repo.SKUExists(ctx, sku, &variant.ID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sku")
			}
			if taken {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate sku")
			}
		}
		variant.SKU = sku
	}
	if input.Name != nil {
		variant.Name = strings.TrimSpace(*input.Name)
	}
	if input.PriceSet {
		variant.PriceCents = input.PriceCents
	}
	if input.LowStockThreshold != nil {
		if *input.LowStockThreshold < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "low_stock_threshold must be non-negative")
		}
		variant.LowStockThreshold = *input.LowStockThreshold
	}
	if input.WeightGrams != nil {
		variant.WeightGrams = input.WeightGrams
	}
	if input.Length != nil {
		variant.Length = input.Length
	}
	if input.Width != nil {
		variant.Width = input.Width
	}
	if input.Height != nil {
		variant.Height = input.Height
	}
	if input.IsActive != nil {
		variant.IsActive = *input.IsActive
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		variant.AttributeValues = nil
		if err := txRepo.Save(ctx, variant); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update variant")
		}
		if input.AttributeValueIDs != nil {
			known, err := s.resolveAttributeValues(ctx, txRepo, variant.ID, *input.AttributeValueIDs)
			if err != nil {
				return err
			}
			if err := txRepo.ReplaceAttributeValues(ctx, variant.ID, known); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace attribute values")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update variant")
	}

	return s.loadDTO(ctx, variant.ID)
}

// DeleteVariant tombstones the variant. The SKU stays reserved.
func (s *service) DeleteVariant(ctx context.Context, variantID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, variantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	if err := s.repo.SoftDelete(ctx, variantID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete variant")
	}
	return nil
}

// GetVariant loads a single variant.
func (s *service) GetVariant(ctx context.Context, variantID uuid.UUID) (*VariantDTO, error) {
	return s.loadDTO(ctx, variantID)
}

// UpdateStock dispatches a single stock mutation to the ledger.
func (s *service) UpdateStock(ctx context.Context, variantID uuid.UUID, operation string, quantity int) (*VariantDTO, error) {
	op, err := enums.ParseStockOperation(operation)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid stock operation")
	}

	switch op {
	case enums.StockOperationSet:
		err = s.ledger.SetStock(ctx, variantID, quantity)
	case enums.StockOperationAdd:
		err = s.ledger.AddStock(ctx, variantID, quantity)
	case enums.StockOperationReduce:
		err = s.ledger.ReduceStock(ctx, variantID, quantity)
	}
	if err != nil {
		return nil, err
	}
	return s.loadDTO(ctx, variantID)
}

// BulkUpdateStock applies each update independently and reports a summary.
// One failing entry never rolls back its siblings.
func (s *service) BulkUpdateStock(ctx context.Context, updates []StockUpdate) (*BulkStockSummary, error) {
	summary := &BulkStockSummary{FailedIDs: []uuid.UUID{}}
	var failures error
	for _, update := range updates {
		if _, err := s.UpdateStock(ctx, update.VariantID, update.Operation, update.Quantity); err != nil {
			summary.Failed++
			summary.FailedIDs = append(summary.FailedIDs, update.VariantID)
			failures = multierr.Append(failures, fmt.Errorf("variant %s: %w", update.VariantID, err))
			continue
		}
		summary.Success++
	}
	if failures != nil {
		s.logg.Warn(ctx, fmt.Sprintf("bulk stock update finished with %d failure(s): %v", summary.Failed, failures))
	}
	return summary, nil
}

// LowStockVariants lists active variants whose stock sits at or below their
// threshold.
func (s *service) LowStockVariants(ctx context.Context) ([]VariantDTO, error) {
	rows, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock variants")
	}
	result := make([]VariantDTO, 0, len(rows))
	for i := range rows {
		var base int64
		if rows[i].Product != nil {
			base = rows[i].Product.BasePriceCents
		}
		result = append(result, *NewVariantDTO(&rows[i], base))
	}
	return result, nil
}

// resolveAttributeValues keeps the known subset of the requested ids. Unknown
// ids are skipped, not surfaced; the warn log is the paper trail.
func (s *service) resolveAttributeValues(ctx context.Context, repo *Repository, variantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	deduped := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, id)
	}

	known, err := repo.FilterKnownAttributeValueIDs(ctx, deduped)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve attribute values")
	}
	if len(known) < len(deduped) {
		knownSet := make(map[uuid.UUID]struct{}, len(known))
		for _, id := range known {
			knownSet[id] = struct{}{}
		}
		for _, id := range deduped {
			if _, ok := knownSet[id]; !ok {
				s.logg.Warn(ctx, fmt.Sprintf("skipping unknown attribute value %s on variant %s", id, variantID))
			}
		}
	}
	return known, nil
}

func (s *service) loadDTO(ctx context.Context, variantID uuid.UUID) (*VariantDTO, error) {
	variant, err := s.repo.FindByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	product, err := s.repo.FindProduct(ctx, variant.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return NewVariantDTO(variant, product.BasePriceCents), nil
}
