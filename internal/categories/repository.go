package category

import (
	"context"

	"github.com/breaddesk/breaddesk-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles category persistence.
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

// List returns all categories with their product counts, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Select("categories.*, (SELECT COUNT(*) FROM products p WHERE p.category_id = categories.id) AS product_count").
		Order("categories.id DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads the category without associations.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Category, error) {
	var row models.Category
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// GetDetail loads the category with its products and each product's
// materials, images, and size image in batched preloads.
func (r *Repository) GetDetail(ctx context.Context, id uint) (*models.Category, error) {
	var row models.Category
	err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("Products.Materials").
		Preload("Products.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Products.SizeImage").
		First(&row, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a new category row.
func (r *Repository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// Update saves an existing category row.
func (r *Repository) Update(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category by ID. Products keep their category_id.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{}).Error
}
