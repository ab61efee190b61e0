package productimage

import (
	"context"
	"database/sql"

	"github.com/breaddesk/breaddesk-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles gallery image persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// List returns gallery images, optionally narrowed to one product, always in
// sort order.
func (r *Repository) List(ctx context.Context, productID *uint) ([]models.ProductImage, error) {
	q := r.db.WithContext(ctx).Order("sort_order ASC, id ASC")
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	}
	var rows []models.ProductImage
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads one gallery image row.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.ProductImage, error) {
	var row models.ProductImage
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// MaxSortOrder returns the highest sort_order for the product, or -1 when the
// product has no images yet.
func (r *Repository) MaxSortOrder(ctx context.Context, productID uint) (int, error) {
	var max sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&models.ProductImage{}).
		Where("product_id = ?", productID).
		Select("MAX(sort_order)").
		Scan(&max).
		Error
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

// Create inserts a new gallery image row.
func (r *Repository) Create(ctx context.Context, image *models.ProductImage) (*models.ProductImage, error) {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return nil, err
	}
	return image, nil
}

// Update saves an existing gallery image row.
func (r *Repository) Update(ctx context.Context, image *models.ProductImage) (*models.ProductImage, error) {
	if err := r.db.WithContext(ctx).Save(image).Error; err != nil {
		return nil, err
	}
	return image, nil
}

// Delete removes a gallery image row by ID.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ProductImage{}).Error
}

// UpdateSortOrder sets the sort_order of one image row.
func (r *Repository) UpdateSortOrder(ctx context.Context, id uint, sortOrder int) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductImage{}).
		Where("id = ?", id).
		Update("sort_order", sortOrder)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
