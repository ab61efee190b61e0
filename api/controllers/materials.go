package controllers

import (
	"net/http"

	"github.com/breaddesk/breaddesk-backend/api/responses"
	"github.com/breaddesk/breaddesk-backend/api/validators"
	materialsvc "github.com/breaddesk/breaddesk-backend/internal/materials"
	pkgerrors "github.com/breaddesk/breaddesk-backend/pkg/errors"
	"github.com/breaddesk/breaddesk-backend/pkg/logger"
)

type materialRequest struct {
	MaterialName string `json:"material_name" validate:"required,max=255"`
}

// ListMaterials returns every material with its product count.
func ListMaterials(svc materialsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "material service unavailable"))
			return
		}

		materials, err := svc.ListMaterials(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, "materials retrieved", "no materials found", materials, len(materials))
	}
}

// CreateMaterial stores a new material.
func CreateMaterial(svc materialsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "material service unavailable"))
			return
		}

		var payload materialRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		material, err := svc.CreateMaterial(r.Context(), payload.MaterialName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "material created", material)
	}
}

// UpdateMaterial renames a material.
func UpdateMaterial(svc materialsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "material service unavailable"))
			return
		}

		id, err := validators.ParseURLID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload materialRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		material, err := svc.UpdateMaterial(r.Context(), id, payload.MaterialName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "material updated", material)
	}
}

// DeleteMaterial removes a material and detaches it from all products.
func DeleteMaterial(svc materialsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "material service unavailable"))
			return
		}

		id, err := validators.ParseURLID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteMaterial(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "material deleted", nil)
	}
}
