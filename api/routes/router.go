package routes

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/breaddesk/breaddesk-backend/api/controllers"
	"github.com/breaddesk/breaddesk-backend/api/middleware"
	authsvc "github.com/breaddesk/breaddesk-backend/internal/auth"
	categorysvc "github.com/breaddesk/breaddesk-backend/internal/categories"
	materialsvc "github.com/breaddesk/breaddesk-backend/internal/materials"
	imagesvc "github.com/breaddesk/breaddesk-backend/internal/productimages"
	productsvc "github.com/breaddesk/breaddesk-backend/internal/products"
	sizesvc "github.com/breaddesk/breaddesk-backend/internal/sizeimages"
	"github.com/breaddesk/breaddesk-backend/pkg/auth/session"
	"github.com/breaddesk/breaddesk-backend/pkg/config"
	"github.com/breaddesk/breaddesk-backend/pkg/logger"
	"github.com/breaddesk/breaddesk-backend/pkg/metrics"
	"github.com/breaddesk/breaddesk-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	HTTPMetrics *metrics.HTTPMetrics

	Database controllers.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker

	Auth          authsvc.Service
	Categories    categorysvc.Service
	Materials     materialsvc.Service
	Products      productsvc.Service
	ProductImages imagesvc.Service
	SizeImages    sizesvc.Service

	MetricsHandler http.Handler
}

// NewRouter wires middleware, public endpoints, and the authenticated
// catalog routes.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Database, deps.Redis, logg))
	})

	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	if cfg.Storage.Driver == config.StorageDriverDisk {
		root := http.Dir(filepath.Clean(cfg.Storage.DiskBaseDir))
		r.Handle("/storage/*", http.StripPrefix("/storage/", http.FileServer(root)))
	}

	r.Post("/login", controllers.Login(deps.Auth, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Post("/logout", controllers.Logout(deps.Auth, logg))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(deps.Categories, logg))
			r.Get("/{id}", controllers.GetCategory(deps.Categories, logg))
			r.Post("/store", controllers.CreateCategory(deps.Categories, cfg.Upload, logg))
			r.Patch("/{id}", controllers.UpdateCategory(deps.Categories, cfg.Upload, logg))
			r.Delete("/delete/{id}", controllers.DeleteCategory(deps.Categories, logg))
		})

		r.Route("/materials", func(r chi.Router) {
			r.Get("/", controllers.ListMaterials(deps.Materials, logg))
			r.Post("/store", controllers.CreateMaterial(deps.Materials, logg))
			r.Patch("/{id}", controllers.UpdateMaterial(deps.Materials, logg))
			r.Delete("/delete/{id}", controllers.DeleteMaterial(deps.Materials, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, logg))
			r.Get("/filter", controllers.FilterProducts(deps.Products, logg))
			r.Get("/search", controllers.SearchProducts(deps.Products, logg))
			r.Get("/{id}", controllers.GetProduct(deps.Products, logg))
			r.Get("/{id}/recommended", controllers.RecommendedProducts(deps.Products, logg))
			r.Post("/store", controllers.CreateProduct(deps.Products, logg))
			r.Patch("/{id}", controllers.UpdateProduct(deps.Products, logg))
			r.Delete("/delete/{id}", controllers.DeleteProduct(deps.Products, logg))
		})

		r.Route("/product-images", func(r chi.Router) {
			r.Get("/", controllers.ListProductImages(deps.ProductImages, logg))
			r.Post("/store", controllers.CreateProductImage(deps.ProductImages, cfg.Upload, logg))
			r.Post("/reorder", controllers.ReorderProductImages(deps.ProductImages, logg))
			r.Patch("/{id}", controllers.UpdateProductImage(deps.ProductImages, cfg.Upload, logg))
			r.Delete("/delete/{id}", controllers.DeleteProductImage(deps.ProductImages, logg))
		})

		r.Route("/product-size-image", func(r chi.Router) {
			r.Get("/{productId}", controllers.GetProductSizeImage(deps.SizeImages, logg))
			r.Post("/store", controllers.CreateProductSizeImage(deps.SizeImages, cfg.Upload, logg))
			r.Patch("/{productId}", controllers.UpdateProductSizeImage(deps.SizeImages, cfg.Upload, logg))
			r.Delete("/delete/{productId}", controllers.DeleteProductSizeImage(deps.SizeImages, logg))
		})
	})

	return r
}
