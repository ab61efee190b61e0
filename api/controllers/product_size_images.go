package controllers

import (
	"net/http"

	"github.com/breaddesk/breaddesk-backend/api/responses"
	"github.com/breaddesk/breaddesk-backend/api/validators"
	sizesvc "github.com/breaddesk/breaddesk-backend/internal/sizeimages"
	"github.com/breaddesk/breaddesk-backend/pkg/config"
	pkgerrors "github.com/breaddesk/breaddesk-backend/pkg/errors"
	"github.com/breaddesk/breaddesk-backend/pkg/logger"
)

// GetProductSizeImage returns the size chart for a product.
func GetProductSizeImage(svc sizesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "size image service unavailable"))
			return
		}

		productID, err := validators.ParseURLID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		image, err := svc.GetByProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "size image retrieved", image)
	}
}

// CreateProductSizeImage uploads a size chart; a product holds at most one.
func CreateProductSizeImage(svc sizesvc.Service, uploadCfg config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "size image service unavailable"))
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

		image, err := svc.Create(r.Context(), productID, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "size image created", image)
	}
}

// UpdateProductSizeImage replaces the size chart blob for a product.
func UpdateProductSizeImage(svc sizesvc.Service, uploadCfg config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "size image service unavailable"))
			return
		}

		productID, err := validators.ParseURLID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := validators.ParseMultipart(r, uploadCfg.MaxUploadBytes()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, err := validators.FormImage(r, "image", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		image, err := svc.Update(r.Context(), productID, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "size image updated", image)
	}
}

// DeleteProductSizeImage removes the size chart blob and row.
func DeleteProductSizeImage(svc sizesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "size image service unavailable"))
			return
		}

		productID, err := validators.ParseURLID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "size image deleted", nil)
	}
}
