package sizeimage

import (
	"context"

	"github.com/breaddesk/breaddesk-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles size-chart image persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByProductID loads the size-chart row for the product.
func (r *Repository) FindByProductID(ctx context.Context, productID uint) (*models.ProductSizeImage, error) {
	var row models.ProductSizeImage
	if err := r.db.WithContext(ctx).First(&row, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a new size-chart row. The unique index on product_id is the
// backstop against double creation.
func (r *Repository) Create(ctx context.Context, image *models.ProductSizeImage) (*models.ProductSizeImage, error) {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return nil, err
	}
	return image, nil
}

// Update saves an existing size-chart row.
func (r *Repository) Update(ctx context.Context, image *models.ProductSizeImage) (*models.ProductSizeImage, error) {
	if err := r.db.WithContext(ctx).Save(image).Error; err != nil {
		return nil, err
	}
	return image, nil
}

// DeleteByProductID removes the product's size-chart row.
func (r *Repository) DeleteByProductID(ctx context.Context, productID uint) error {
	return r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.ProductSizeImage{}).Error
}
