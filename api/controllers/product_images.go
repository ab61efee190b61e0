package controllers

import (
	"net/http"

	"github.com/breaddesk/breaddesk-backend/api/responses"
	"github.com/breaddesk/breaddesk-backend/api/validators"
	imagesvc "github.com/breaddesk/breaddesk-backend/internal/productimages"
	"github.com/breaddesk/breaddesk-backend/pkg/config"
	pkgerrors "github.com/breaddesk/breaddesk-backend/pkg/errors"
	"github.com/breaddesk/breaddesk-backend/pkg/logger"
)

type reorderImagesRequest struct {
	Images []imagesvc.ReorderItem `json:"images" validate:"required,min=1,dive"`
}

// ListProductImages returns gallery images ordered by sort position,
// optionally scoped to one product.
func ListProductImages(svc imagesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product image service unavailable"))
			return
		}

		productID, err := validators.ParseQueryID(r, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		images, err := svc.ListImages(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, "product images retrieved", "no product images found", images, len(images))
	}
}

// CreateProductImage uploads a gallery image for a product. When sort_order
// is omitted the image is appended after the current maximum.
func CreateProductImage(svc imagesvc.Service, uploadCfg config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product image service unavailable"))
			return
		}

		if err := validators.ParseMultipart(r, uploadCfg.MaxUploadBytes()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.FormID(r, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, err := validators.FormImage(r, "image", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sortOrder, err := validators.FormOptionalInt(r, "sort_order")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		image, err := svc.CreateImage(r.Context(), imagesvc.CreateImageInput{
			ProductID: productID,
			File:      file,
			SortOrder: sortOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "product image created", image)
	}
}

// UpdateProductImage replaces the blob and/or adjusts the sort position.
func UpdateProductImage(svc imagesvc.Service, uploadCfg config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product image service unavailable"))
			return
		}

		id, err := validators.ParseURLID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := validators.ParseMultipart(r, uploadCfg.MaxUploadBytes()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, err := validators.FormImage(r, "image", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sortOrder, err := validators.FormOptionalInt(r, "sort_order")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		image, err := svc.UpdateImage(r.Context(), id, imagesvc.UpdateImageInput{
			File:      file,
			SortOrder: sortOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "product image updated", image)
	}
}

// DeleteProductImage removes the blob and the row.
func DeleteProductImage(svc imagesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product image service unavailable"))
			return
		}

		id, err := validators.ParseURLID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteImage(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "product image deleted", nil)
	}
}

// ReorderProductImages applies a batch of sort positions atomically.
func ReorderProductImages(svc imagesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product image service unavailable"))
			return
		}

		var payload reorderImagesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ReorderImages(r.Context(), payload.Images); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "product images reordered", nil)
	}
}
