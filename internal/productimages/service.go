package productimage

import (
	"context"
	"errors"
	"fmt"

	"github.com/breaddesk/breaddesk-backend/pkg/db"
	"github.com/breaddesk/breaddesk-backend/pkg/db/models"
	pkgerrors "github.com/breaddesk/breaddesk-backend/pkg/errors"
	"github.com/breaddesk/breaddesk-backend/pkg/storage"
	"gorm.io/gorm"
)

// Service exposes gallery image management operations.
type Service interface {
	ListImages(ctx context.Context, productID *uint) ([]models.ProductImage, error)
	CreateImage(ctx context.Context, input CreateImageInput) (*models.ProductImage, error)
	UpdateImage(ctx context.Context, id uint, input UpdateImageInput) (*models.ProductImage, error)
	DeleteImage(ctx context.Context, id uint) error
	ReorderImages(ctx context.Context, items []ReorderItem) error
}

// CreateImageInput holds the payload for a new gallery image. SortOrder nil
// appends the image after the product's current maximum.
type CreateImageInput struct {
	ProductID uint
	File      *storage.File
	SortOrder *int
}

// UpdateImageInput holds optional mutation values. A nil File keeps the
// current blob.
type UpdateImageInput struct {
	File      *storage.File
	SortOrder *int
}

// ReorderItem assigns one image its new position.
type ReorderItem struct {
	ID        uint `json:"id" validate:"required"`
	SortOrder int  `json:"sort_order" validate:"min=0"`
}

type productLoader interface {
	FindByID(ctx context.Context, id uint) (*models.Product, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	products productLoader
	store    storage.Store
}

// NewService constructs a gallery image service instance.
func NewService(repo *Repository, dbClient *db.Client, products productLoader, store storage.Store) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product image repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("blob store required")
	}
	return &service{repo: repo, dbClient: dbClient, products: products, store: store}, nil
}

// ListImages returns gallery images in display order, optionally for a single
// product.
func (s *service) ListImages(ctx context.Context, productID *uint) ([]models.ProductImage, error) {
	rows, err := s.repo.List(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list product images")
	}
	return rows, nil
}

// CreateImage uploads the blob and inserts the row. Without an explicit
// sort_order the image lands after the product's current last one.
func (s *service) CreateImage(ctx context.Context, input CreateImageInput) (*models.ProductImage, error) {
	if input.File == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image file is required")
	}
	if input.SortOrder != nil && *input.SortOrder < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sort_order must be non-negative")
	}

	if _, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	sortOrder := 0
	if input.SortOrder != nil {
		sortOrder = *input.SortOrder
	} else {
		max, err := s.repo.MaxSortOrder(ctx, input.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: read max sort order")
		}
		sortOrder = max + 1
	}

	obj, err := s.store.Upload(ctx, storage.FolderProductImages, input.File.Name, input.File.ContentType, input.File.Reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage: upload product image")
	}

	row := &models.ProductImage{
		ProductID: input.ProductID,
		ImageKey:  obj.Key,
		ImageURL:  obj.URL,
		SortOrder: sortOrder,
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		_ = s.store.Delete(ctx, obj.Key)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product image")
	}
	return created, nil
}

// UpdateImage applies a partial update. A new file replaces the blob: the old
// one is deleted before the upload.
func (s *service) UpdateImage(ctx context.Context, id uint, input UpdateImageInput) (*models.ProductImage, error) {
	if input.SortOrder != nil && *input.SortOrder < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sort_order must be non-negative")
	}

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product image not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product image")
	}

	if input.File != nil {
		if err := s.store.Delete(ctx, row.ImageKey); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage: delete previous product image")
		}
		obj, err := s.store.Upload(ctx, storage.FolderProductImages, input.File.Name, input.File.ContentType, input.File.Reader)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage: upload product image")
		}
		row.ImageKey = obj.Key
		row.ImageURL = obj.URL
	}

	if input.SortOrder != nil {
		row.SortOrder = *input.SortOrder
	}

	updated, err := s.repo.Update(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product image")
	}
	return updated, nil
}

// DeleteImage removes the blob, then the row.
func (s *service) DeleteImage(ctx context.Context, id uint) error {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product image not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product image")
	}

	if err := s.store.Delete(ctx, row.ImageKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage: delete product image")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product image")
	}
	return nil
}

// ReorderImages applies a batch of sort assignments atomically. Any unknown
// ID fails the whole batch, leaving every position unchanged. Ownership never
// moves: only sort_order is touched.
func (s *service) ReorderImages(ctx context.Context, items []ReorderItem) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "images are required")
	}
	seen := make(map[uint]struct{}, len(items))
	for _, item := range items {
		if item.ID == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "image id is required")
		}
		if item.SortOrder < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "sort_order must be non-negative")
		}
		if _, ok := seen[item.ID]; ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate image ids")
		}
		seen[item.ID] = struct{}{}
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		for _, item := range items {
			if err := txRepo.UpdateSortOrder(ctx, item.ID, item.SortOrder); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "one or more images do not exist")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update sort order")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reorder images")
	}
	return nil
}
