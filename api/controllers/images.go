package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/catalog-backend/api/responses"
	"github.com/angelmondragon/catalog-backend/api/validators"
	productsvc "github.com/angelmondragon/catalog-backend/internal/products"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/google/uuid"
)

type addImageRequest struct {
	ImageURL  string `json:"image_url" validate:"required,url"`
	AltText   string `json:"alt_text,omitempty"`
	IsPrimary bool   `json:"is_primary,omitempty"`
}

// ProductImageAdd attaches an image to a product.
func ProductImageAdd(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload addImageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		image, err := svc.AddImage(r.Context(), productID, productsvc.ImageInput{
			ImageURL:  payload.ImageURL,
			AltText:   payload.AltText,
			IsPrimary: payload.IsPrimary,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, image)
	}
}

type updateImageRequest struct {
	ImageURL  *string `json:"image_url,omitempty" validate:"omitempty,url"`
	AltText   *string `json:"alt_text,omitempty"`
	IsPrimary *bool   `json:"is_primary,omitempty"`
}

// ProductImageUpdate mutates an image, including primary promotion.
func ProductImageUpdate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		imageID, err := validators.ParsePathUUID(chi.URLParam(r, "imageId"), "imageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateImageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		image, err := svc.UpdateImage(r.Context(), imageID, productsvc.UpdateImageInput{
			ImageURL:  payload.ImageURL,
			AltText:   payload.AltText,
			IsPrimary: payload.IsPrimary,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, image)
	}
}

type reorderImagesRequest struct {
	ImageIDs []string `json:"image_ids" validate:"required,min=1,dive,uuid"`
}

// ProductImageReorder rewrites the display order of a product's images.
func ProductImageReorder(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload reorderImagesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderedIDs := make([]uuid.UUID, 0, len(payload.ImageIDs))
		for _, raw := range payload.ImageIDs {
			id, err := validators.ParsePathUUID(raw, "image_ids")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			orderedIDs = append(orderedIDs, id)
		}

		images, err := svc.ReorderImages(r.Context(), productID, orderedIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, images)
	}
}

// ProductImageDelete tombstones an image.
func ProductImageDelete(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		imageID, err := validators.ParsePathUUID(chi.URLParam(r, "imageId"), "imageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteImage(r.Context(), imageID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
