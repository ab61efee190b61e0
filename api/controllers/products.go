package controllers

import (
	"net/http"
	"strings"

	"github.com/breaddesk/breaddesk-backend/api/responses"
	"github.com/breaddesk/breaddesk-backend/api/validators"
	productsvc "github.com/breaddesk/breaddesk-backend/internal/products"
	pkgerrors "github.com/breaddesk/breaddesk-backend/pkg/errors"
	"github.com/breaddesk/breaddesk-backend/pkg/logger"
)

type createProductRequest struct {
	ProductName  string  `json:"product_name" validate:"required,max=255"`
	ProductCode  string  `json:"product_code" validate:"required,max=255"`
	CategoryID   uint    `json:"category_id" validate:"required"`
	Description  *string `json:"description,omitempty"`
	Color        *string `json:"color,omitempty" validate:"omitempty,max=255"`
	Finishing    *string `json:"finishing,omitempty" validate:"omitempty,max=255"`
	ShopeeURL    *string `json:"shopee_url,omitempty" validate:"omitempty,url"`
	TokopediaURL *string `json:"tokopedia_url,omitempty" validate:"omitempty,url"`
	MaterialIDs  []uint  `json:"material_ids,omitempty" validate:"omitempty,dive,required"`
}

type updateProductRequest struct {
	ProductName  *string `json:"product_name,omitempty" validate:"omitempty,max=255"`
	ProductCode  *string `json:"product_code,omitempty" validate:"omitempty,max=255"`
	CategoryID   *uint   `json:"category_id,omitempty"`
	Description  *string `json:"description,omitempty"`
	Color        *string `json:"color,omitempty" validate:"omitempty,max=255"`
	Finishing    *string `json:"finishing,omitempty" validate:"omitempty,max=255"`
	ShopeeURL    *string `json:"shopee_url,omitempty" validate:"omitempty,url"`
	TokopediaURL *string `json:"tokopedia_url,omitempty" validate:"omitempty,url"`
	MaterialIDs  *[]uint `json:"material_ids,omitempty"`
}

// ListProducts returns the catalog, optionally scoped to one category.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		categoryID, err := validators.ParseQueryID(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.ListProducts(r.Context(), categoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, "products retrieved", "no products found", products, len(products))
	}
}

// GetProduct returns one product with category, materials, and images.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParseURLID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "product retrieved", product)
	}
}

// FilterProducts narrows the catalog by category, material, and a name or
// code search term. All provided criteria must match.
func FilterProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		categoryID, err := validators.ParseQueryID(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		materialID, err := validators.ParseQueryID(r, "material_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := productsvc.FilterQuery{
			CategoryID: categoryID,
			MaterialID: materialID,
			Search:     strings.TrimSpace(r.URL.Query().Get("search")),
		}

		products, err := svc.FilterProducts(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, "products retrieved", "no products match the given filters", products, len(products))
	}
}

// SearchProducts matches products by name only.
func SearchProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		products, err := svc.SearchProducts(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, "products retrieved", "no products match the search", products, len(products))
	}
}

// RecommendedProducts returns a random sample of other products that have
// at least one gallery image.
func RecommendedProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParseURLID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", productsvc.DefaultRecommendedLimit, 1, 24)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.RecommendedProducts(r.Context(), id, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, "products retrieved", "no recommendations available", products, len(products))
	}
}

// CreateProduct stores a new product and attaches its materials.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		product, err := svc.CreateProduct(r.Context(), productsvc.CreateProductInput{
			ProductName:  payload.ProductName,
			ProductCode:  payload.ProductCode,
			CategoryID:   payload.CategoryID,
			Description:  payload.Description,
			Color:        payload.Color,
			Finishing:    payload.Finishing,
			ShopeeURL:    payload.ShopeeURL,
			TokopediaURL: payload.TokopediaURL,
			MaterialIDs:  payload.MaterialIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "product created", product)
	}
}

// UpdateProduct patches product fields and optionally syncs materials.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParseURLID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), id, productsvc.UpdateProductInput{
			ProductName:  payload.ProductName,
			ProductCode:  payload.ProductCode,
			CategoryID:   payload.CategoryID,
			Description:  payload.Description,
			Color:        payload.Color,
			Finishing:    payload.Finishing,
			ShopeeURL:    payload.ShopeeURL,
			TokopediaURL: payload.TokopediaURL,
			MaterialIDs:  payload.MaterialIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "product updated", product)
	}
}

// DeleteProduct removes a product, its join rows, and every image blob.
func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParseURLID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "product deleted", nil)
	}
}
