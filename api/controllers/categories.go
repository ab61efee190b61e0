package controllers

import (
	"net/http"

	"github.com/breaddesk/breaddesk-backend/api/responses"
	"github.com/breaddesk/breaddesk-backend/api/validators"
	categorysvc "github.com/breaddesk/breaddesk-backend/internal/categories"
	"github.com/breaddesk/breaddesk-backend/pkg/config"
	pkgerrors "github.com/breaddesk/breaddesk-backend/pkg/errors"
	"github.com/breaddesk/breaddesk-backend/pkg/logger"
)

// ListCategories returns every category with its product count.
func ListCategories(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, "categories retrieved", "no categories found", categories, len(categories))
	}
}

// GetCategory returns one category with its full product catalog.
func GetCategory(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		id, err := validators.ParseURLID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.GetCategory(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "category retrieved", category)
	}
}

// CreateCategory stores a new category with an optional image upload.
func CreateCategory(svc categorysvc.Service, uploadCfg config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
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

		category, err := svc.CreateCategory(r.Context(), categorysvc.CreateCategoryInput{
			CategoryName: validators.FormString(r, "category_name"),
			Image:        file,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "category created", category)
	}
}

// UpdateCategory patches a category's name and/or replaces its image.
func UpdateCategory(svc categorysvc.Service, uploadCfg config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
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

		category, err := svc.UpdateCategory(r.Context(), id, categorysvc.UpdateCategoryInput{
			CategoryName: validators.FormOptionalString(r, "category_name"),
			Image:        file,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "category updated", category)
	}
}

// DeleteCategory removes a category and its image blob. Products keep
// their dangling category reference.
func DeleteCategory(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		id, err := validators.ParseURLID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteCategory(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "category deleted", nil)
	}
}
