package sizeimage

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

// Service exposes size-chart image operations. Every product holds at most
// one size-chart image; the second create is a conflict, never a replace.
type Service interface {
	GetByProduct(ctx context.Context, productID uint) (*models.ProductSizeImage, error)
	Create(ctx context.Context, productID uint, file *storage.File) (*models.ProductSizeImage, error)
	Update(ctx context.Context, productID uint, file *storage.File) (*models.ProductSizeImage, error)
	Delete(ctx context.Context, productID uint) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uint) (*models.Product, error)
}

type service struct {
	repo     *Repository
	products productLoader
	store    storage.Store
}

// NewService constructs a size-chart image service instance.
func NewService(repo *Repository, products productLoader, store storage.Store) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("size image repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("blob store required")
	}
	return &service{repo: repo, products: products, store: store}, nil
}

// GetByProduct returns the product's size-chart image.
func (s *service) GetByProduct(ctx context.Context, productID uint) (*models.ProductSizeImage, error) {
	row, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "size image not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load size image")
	}
	return row, nil
}

// Create uploads the blob and inserts the row. An existing size image for the
// product is a conflict and stays untouched.
func (s *service) Create(ctx context.Context, productID uint, file *storage.File) (*models.ProductSizeImage, error) {
	if file == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image file is required")
	}

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	if _, err := s.repo.FindByProductID(ctx, productID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already has a size image")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check size image")
	}

	obj, err := s.store.Upload(ctx, storage.FolderProductSizeImage, file.Name, file.ContentType, file.Reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage: upload size image")
	}

	row := &models.ProductSizeImage{
		ProductID: productID,
		ImageKey:  obj.Key,
		ImageURL:  obj.URL,
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		_ = s.store.Delete(ctx, obj.Key)
		if db.IsUniqueViolation(err, "idx_product_size_images_product_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already has a size image")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert size image")
	}
	return created, nil
}

// Update replaces the size-chart image: the old blob is deleted before the
// new upload is stored. A missing row is not upserted.
func (s *service) Update(ctx context.Context, productID uint, file *storage.File) (*models.ProductSizeImage, error) {
	if file == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image file is required")
	}

	row, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "size image not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load size image")
	}

	if err := s.store.Delete(ctx, row.ImageKey); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage: delete previous size image")
	}
	obj, err := s.store.Upload(ctx, storage.FolderProductSizeImage, file.Name, file.ContentType, file.Reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage: upload size image")
	}

	row.ImageKey = obj.Key
	row.ImageURL = obj.URL
	updated, err := s.repo.Update(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update size image")
	}
	return updated, nil
}

// Delete removes the blob, then the row.
func (s *service) Delete(ctx context.Context, productID uint) error {
	row, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "size image not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load size image")
	}

	if err := s.store.Delete(ctx, row.ImageKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage: delete size image")
	}
	if err := s.repo.DeleteByProductID(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete size image")
	}
	return nil
}
