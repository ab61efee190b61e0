package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/breaddesk/breaddesk-backend/api/routes"
	"github.com/breaddesk/breaddesk-backend/internal/auth"
	categories "github.com/breaddesk/breaddesk-backend/internal/categories"
	materials "github.com/breaddesk/breaddesk-backend/internal/materials"
	productimages "github.com/breaddesk/breaddesk-backend/internal/productimages"
	products "github.com/breaddesk/breaddesk-backend/internal/products"
	sizeimages "github.com/breaddesk/breaddesk-backend/internal/sizeimages"
	"github.com/breaddesk/breaddesk-backend/internal/users"
	"github.com/breaddesk/breaddesk-backend/pkg/auth/session"
	"github.com/breaddesk/breaddesk-backend/pkg/config"
	"github.com/breaddesk/breaddesk-backend/pkg/db"
	"github.com/breaddesk/breaddesk-backend/pkg/logger"
	"github.com/breaddesk/breaddesk-backend/pkg/metrics"
	"github.com/breaddesk/breaddesk-backend/pkg/migrate"
	"github.com/breaddesk/breaddesk-backend/pkg/redis"
	"github.com/breaddesk/breaddesk-backend/pkg/storage"
	"github.com/breaddesk/breaddesk-backend/pkg/storage/cloudinary"
	"github.com/breaddesk/breaddesk-backend/pkg/storage/disk"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	blobStore, err := newBlobStore(cfg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap blob storage", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	categoryRepo := categories.NewRepository(dbClient.DB())
	materialRepo := materials.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	imageRepo := productimages.NewRepository(dbClient.DB())
	sizeRepo := sizeimages.NewRepository(dbClient.DB())

	categoryService, err := categories.NewService(categoryRepo, blobStore)
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}
	materialService, err := materials.NewService(materialRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create material service", err)
		os.Exit(1)
	}
	productService, err := products.NewService(productRepo, dbClient, categoryRepo, materialRepo, blobStore)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}
	imageService, err := productimages.NewService(imageRepo, dbClient, productRepo, blobStore)
	if err != nil {
		logg.Error(context.Background(), "failed to create product image service", err)
		os.Exit(1)
	}
	sizeImageService, err := sizeimages.NewService(sizeRepo, productRepo, blobStore)
	if err != nil {
		logg.Error(context.Background(), "failed to create size image service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"storage": cfg.Storage.Driver,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			HTTPMetrics:   httpMetrics,
			Database:      dbClient,
			Redis:         redisClient,
			Sessions:      sessionManager,
			Auth:          authService,
			Categories:    categoryService,
			Materials:     materialService,
			Products:      productService,
			ProductImages: imageService,
			SizeImages:    sizeImageService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func newBlobStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverDisk, "":
		return disk.New(cfg.Storage)
	case config.StorageDriverCloudinary:
		return cloudinary.New(cfg.Cloudinary)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
