package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-backend/api/responses"
	"github.com/angelmondragon/catalog-backend/api/validators"
	productsvc "github.com/angelmondragon/catalog-backend/internal/products"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
	"github.com/angelmondragon/catalog-backend/pkg/types"
)

// ProductList serves the filtered, sorted, paginated browse query.
func ProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		input, err := parseListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseListInput(r *http.Request) (productsvc.ListInput, error) {
	var input productsvc.ListInput

	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
	if err != nil {
		return input, err
	}
	pageSize, err := validators.ParseQueryInt(r, "page_size", pagination.DefaultPageSize, 1, 1<<30)
	if err != nil {
		return input, err
	}
	input.Pagination = pagination.Params{Page: page, PageSize: pageSize}

	input.Filters.CategorySlug = strings.TrimSpace(r.URL.Query().Get("category"))
	input.Filters.Query = strings.TrimSpace(r.URL.Query().Get("q"))

	if input.Filters.PriceMinCents, err = validators.ParseQueryPrice(r, "price_min"); err != nil {
		return input, err
	}
	if input.Filters.PriceMaxCents, err = validators.ParseQueryPrice(r, "price_max"); err != nil {
		return input, err
	}
	if input.Filters.PriceMinCents != nil && input.Filters.PriceMaxCents != nil &&
		*input.Filters.PriceMinCents > *input.Filters.PriceMaxCents {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "price_min cannot exceed price_max")
	}

	if input.Filters.FeaturedOnly, err = validators.ParseQueryBool(r, "featured", false); err != nil {
		return input, err
	}
	if input.Filters.InStockOnly, err = validators.ParseQueryBool(r, "in_stock", false); err != nil {
		return input, err
	}
	if input.Filters.AttributeValueIDs, err = validators.ParseQueryUUIDList(r, "attributes"); err != nil {
		return input, err
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("sort")); raw != "" {
		field := enums.ProductSortField(raw)
		if !field.IsValid() {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "unknown sort field").WithDetails(map[string]any{"field": "sort"})
		}
		input.SortField = field
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("order")); raw != "" {
		order := enums.SortOrder(raw)
		if !order.IsValid() {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "unknown sort order").WithDetails(map[string]any{"field": "order"})
		}
		input.SortOrder = order
	}

	return input, nil
}

// ProductBySlug serves the active product detail.
func ProductBySlug(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		product, err := svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type createProductRequest struct {
	Name            string          `json:"name" validate:"required"`
	Description     string          `json:"description,omitempty"`
	CategoryID      string          `json:"category_id" validate:"required,uuid"`
	BasePrice       decimal.Decimal `json:"base_price" validate:"required"`
	IsActive        *bool           `json:"is_active,omitempty"`
	IsFeatured      bool            `json:"is_featured,omitempty"`
	MetaTitle       string          `json:"meta_title,omitempty"`
	MetaDescription string          `json:"meta_description,omitempty"`
}

func (req createProductRequest) toCreateInput() (productsvc.CreateProductInput, error) {
	categoryID, err := validators.ParsePathUUID(req.CategoryID, "category_id")
	if err != nil {
		return productsvc.CreateProductInput{}, err
	}
	cents, err := types.DecimalToCents(req.BasePrice)
	if err != nil {
		return productsvc.CreateProductInput{}, err
	}

	input := productsvc.CreateProductInput{
		Name:            validators.SanitizeString(req.Name, 255),
		Description:     validators.SanitizeString(req.Description, 0),
		CategoryID:      categoryID,
		BasePriceCents:  cents,
		IsActive:        true,
		IsFeatured:      req.IsFeatured,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
	}
	if req.IsActive != nil {
		input.IsActive = *req.IsActive
	}
	return input, nil
}

// ProductCreate handles product creation.
func ProductCreate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type updateProductRequest struct {
	Name            *string          `json:"name,omitempty"`
	Description     *string          `json:"description,omitempty"`
	CategoryID      *string          `json:"category_id,omitempty" validate:"omitempty,uuid"`
	BasePrice       *decimal.Decimal `json:"base_price,omitempty"`
	IsActive        *bool            `json:"is_active,omitempty"`
	IsFeatured      *bool            `json:"is_featured,omitempty"`
	MetaTitle       *string          `json:"meta_title,omitempty"`
	MetaDescription *string          `json:"meta_description,omitempty"`
}

func (req updateProductRequest) toUpdateInput() (productsvc.UpdateProductInput, error) {
	input := productsvc.UpdateProductInput{
		Name:            req.Name,
		Description:     req.Description,
		IsActive:        req.IsActive,
		IsFeatured:      req.IsFeatured,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
	}
	if req.CategoryID != nil {
		categoryID, err := validators.ParsePathUUID(*req.CategoryID, "category_id")
		if err != nil {
			return productsvc.UpdateProductInput{}, err
		}
		input.CategoryID = &categoryID
	}
	if req.BasePrice != nil {
		cents, err := types.DecimalToCents(*req.BasePrice)
		if err != nil {
			return productsvc.UpdateProductInput{}, err
		}
		input.BasePriceCents = &cents
	}
	return input, nil
}

// ProductUpdate handles product mutation.
func ProductUpdate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductDelete tombstones a product with its variants and images.
func ProductDelete(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type bulkProductUpdateRequest struct {
	Updates []bulkProductEntry `json:"updates" validate:"required,min=1,max=100,dive"`
}

type bulkProductEntry struct {
	ProductID string               `json:"product_id" validate:"required,uuid"`
	Changes   updateProductRequest `json:"changes"`
}

// ProductBulkUpdate applies independent updates and reports a summary.
func ProductBulkUpdate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload bulkProductUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updates := make([]productsvc.BulkProductUpdate, 0, len(payload.Updates))
		for _, entry := range payload.Updates {
			productID, err := validators.ParsePathUUID(entry.ProductID, "product_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input, err := entry.Changes.toUpdateInput()
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			updates = append(updates, productsvc.BulkProductUpdate{ProductID: productID, Input: input})
		}

		summary, err := svc.BulkUpdateProducts(r.Context(), updates)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
