package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-backend/api/responses"
	"github.com/angelmondragon/catalog-backend/api/validators"
	variantsvc "github.com/angelmondragon/catalog-backend/internal/variants"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/types"
	"github.com/google/uuid"
)

type createVariantRequest struct {
	SKU               string           `json:"sku" validate:"required"`
	Name              string           `json:"name" validate:"required"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	StockQuantity     int              `json:"stock_quantity" validate:"min=0"`
	LowStockThreshold *int             `json:"low_stock_threshold,omitempty" validate:"omitempty,min=0"`
	WeightGrams       *float64         `json:"weight_grams,omitempty" validate:"omitempty,gte=0"`
	Length            *float64         `json:"length,omitempty" validate:"omitempty,gte=0"`
	Width             *float64         `json:"width,omitempty" validate:"omitempty,gte=0"`
	Height            *float64         `json:"height,omitempty" validate:"omitempty,gte=0"`
	IsActive          *bool            `json:"is_active,omitempty"`
	AttributeValueIDs []string         `json:"attribute_value_ids,omitempty" validate:"omitempty,dive,uuid"`
}

func parseAttributeValueIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := validators.ParsePathUUID(value, "attribute_value_ids")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// VariantCreate attaches a variant to a product.
func VariantCreate(svc variantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "variant service unavailable"))
			return
		}

		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createVariantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := variantsvc.CreateVariantInput{
			SKU:               payload.SKU,
			Name:              payload.Name,
			StockQuantity:     payload.StockQuantity,
			LowStockThreshold: payload.LowStockThreshold,
			WeightGrams:       payload.WeightGrams,
			Length:            payload.Length,
			Width:             payload.Width,
			Height:            payload.Height,
			IsActive:          true,
		}
		if payload.IsActive != nil {
			input.IsActive = *payload.IsActive
		}
		if payload.Price != nil {
			cents, err := types.DecimalToCents(*payload.Price)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.PriceCents = &cents
		}
		if input.AttributeValueIDs, err = parseAttributeValueIDs(payload.AttributeValueIDs); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variant, err := svc.CreateVariant(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, variant)
	}
}

type updateVariantRequest struct {
	SKU   *string          `json:"sku,omitempty"`
	Name  *string          `json:"name,omitempty"`
	Price *decimal.Decimal `json:"price,omitempty"`
	// ClearPrice drops the variant price override so the base price applies.
	ClearPrice        bool      `json:"clear_price,omitempty"`
	LowStockThreshold *int      `json:"low_stock_threshold,omitempty" validate:"omitempty,min=0"`
	WeightGrams       *float64  `json:"weight_grams,omitempty" validate:"omitempty,gte=0"`
	Length            *float64  `json:"length,omitempty" validate:"omitempty,gte=0"`
	Width             *float64  `json:"width,omitempty" validate:"omitempty,gte=0"`
	Height            *float64  `json:"height,omitempty" validate:"omitempty,gte=0"`
	IsActive          *bool     `json:"is_active,omitempty"`
	AttributeValueIDs *[]string `json:"attribute_value_ids,omitempty"`
}

// VariantUpdate mutates a variant.
func VariantUpdate(svc variantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "variant service unavailable"))
			return
		}

		variantID, err := validators.ParsePathUUID(chi.URLParam(r, "variantId"), "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateVariantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := variantsvc.UpdateVariantInput{
			SKU:               payload.SKU,
			Name:              payload.Name,
			LowStockThreshold: payload.LowStockThreshold,
			WeightGrams:       payload.WeightGrams,
			Length:            payload.Length,
			Width:             payload.Width,
			Height:            payload.Height,
			IsActive:          payload.IsActive,
		}
		switch {
		case payload.ClearPrice:
			input.PriceSet = true
		case payload.Price != nil:
			cents, err := types.DecimalToCents(*payload.Price)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.PriceCents = &cents
			input.PriceSet = true
		}
		if payload.AttributeValueIDs != nil {
			ids, err := parseAttributeValueIDs(*payload.AttributeValueIDs)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if ids == nil {
				ids = []uuid.UUID{}
			}
			input.AttributeValueIDs = &ids
		}

		variant, err := svc.UpdateVariant(r.Context(), variantID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, variant)
	}
}

// VariantGet serves a single variant with its attribute values.
func VariantGet(svc variantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "variant service unavailable"))
			return
		}

		variantID, err := validators.ParsePathUUID(chi.URLParam(r, "variantId"), "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variant, err := svc.GetVariant(r.Context(), variantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, variant)
	}
}

// VariantDelete tombstones a variant.
func VariantDelete(svc variantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "variant service unavailable"))
			return
		}

		variantID, err := validators.ParsePathUUID(chi.URLParam(r, "variantId"), "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteVariant(r.Context(), variantID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type stockUpdateRequest struct {
	Operation string `json:"operation" validate:"required,oneof=set add reduce"`
	Quantity  int    `json:"quantity" validate:"min=0"`
}

// VariantStockUpdate applies a single stock operation.
func VariantStockUpdate(svc variantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "variant service unavailable"))
			return
		}

		variantID, err := validators.ParsePathUUID(chi.URLParam(r, "variantId"), "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stockUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variant, err := svc.UpdateStock(r.Context(), variantID, payload.Operation, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, variant)
	}
}

type bulkStockRequest struct {
	Updates []bulkStockEntry `json:"updates" validate:"required,min=1,max=100,dive"`
}

type bulkStockEntry struct {
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Operation string `json:"operation" validate:"required,oneof=set add reduce"`
	Quantity  int    `json:"quantity" validate:"min=0"`
}

// VariantBulkStock applies independent stock operations and reports a summary.
func VariantBulkStock(svc variantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "variant service unavailable"))
			return
		}

		var payload bulkStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updates := make([]variantsvc.StockUpdate, 0, len(payload.Updates))
		for _, entry := range payload.Updates {
			variantID, err := validators.ParsePathUUID(entry.VariantID, "variant_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			updates = append(updates, variantsvc.StockUpdate{
				VariantID: variantID,
				Operation: entry.Operation,
				Quantity:  entry.Quantity,
			})
		}

		summary, err := svc.BulkUpdateStock(r.Context(), updates)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// VariantLowStock lists active variants at or below their threshold.
func VariantLowStock(svc variantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "variant service unavailable"))
			return
		}

		variants, err := svc.LowStockVariants(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, variants)
	}
}
