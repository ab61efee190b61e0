package product

import (
	"context"
	"strings"

	"github.com/breaddesk/breaddesk-backend/pkg/db/models"
	"gorm.io/gorm"
)

// FilterQuery narrows a product listing. All set criteria apply together.
type FilterQuery struct {
	CategoryID *uint
	MaterialID *uint
	Search     string
}

// Repository handles product persistence.
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

func withCatalogPreloads(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Category").
		Preload("Materials").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("SizeImage")
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var row models.Product
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// GetDetail loads the product with category, materials, images, and size
// image preloaded.
func (r *Repository) GetDetail(ctx context.Context, id uint) (*models.Product, error) {
	var row models.Product
	err := withCatalogPreloads(r.db.WithContext(ctx)).
		First(&row, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns products with their relations, optionally narrowed to one
// category, newest first.
func (r *Repository) List(ctx context.Context, categoryID *uint) ([]models.Product, error) {
	q := withCatalogPreloads(r.db.WithContext(ctx)).Order("products.id DESC")
	if categoryID != nil {
		q = q.Where("products.category_id = ?", *categoryID)
	}
	var rows []models.Product
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Filter returns products matching every set criterion. Search matches a
// case-insensitive substring of the name or the code.
func (r *Repository) Filter(ctx context.Context, filter FilterQuery) ([]models.Product, error) {
	q := withCatalogPreloads(r.db.WithContext(ctx).Model(&models.Product{})).
		Order("products.id DESC")

	if filter.CategoryID != nil {
		q = q.Where("products.category_id = ?", *filter.CategoryID)
	}
	if filter.MaterialID != nil {
		q = q.
			Joins("JOIN product_materials pm ON pm.product_id = products.id").
			Where("pm.material_id = ?", *filter.MaterialID).
			Distinct("products.*")
	}
	if needle := strings.TrimSpace(filter.Search); needle != "" {
		pattern := "%" + strings.ToLower(needle) + "%"
		q = q.Where("LOWER(products.product_name) LIKE ? OR LOWER(products.product_code) LIKE ?", pattern, pattern)
	}

	var rows []models.Product
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SearchByName returns products whose name contains the needle,
// case-insensitively.
func (r *Repository) SearchByName(ctx context.Context, needle string) ([]models.Product, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(needle)) + "%"
	var rows []models.Product
	err := withCatalogPreloads(r.db.WithContext(ctx)).
		Where("LOWER(products.product_name) LIKE ?", pattern).
		Order("products.id DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Recommended returns up to limit random products other than excludeID that
// have at least one gallery image. RANDOM() keeps the pick fresh per call and
// works on both Postgres and SQLite.
func (r *Repository) Recommended(ctx context.Context, excludeID uint, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := withCatalogPreloads(r.db.WithContext(ctx)).
		Where("products.id <> ?", excludeID).
		Where("EXISTS (SELECT 1 FROM product_images pi WHERE pi.product_id = products.id)").
		Order("RANDOM()").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CodeExists reports whether another product already uses the code. Pass
// excludeID 0 when creating.
func (r *Repository) CodeExists(ctx context.Context, code string, excludeID uint) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("product_code = ?", code)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Omit("Materials").Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update saves an existing product row without touching associations.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Omit("Materials", "Images", "SizeImage", "Category").Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// ReplaceMaterials syncs the product's material set to exactly the given
// materials.
func (r *Repository) ReplaceMaterials(ctx context.Context, product *models.Product, materials []models.Material) error {
	return r.db.WithContext(ctx).Model(product).Association("Materials").Replace(materials)
}

// ListImages returns the product's gallery image rows.
func (r *Repository) ListImages(ctx context.Context, productID uint) ([]models.ProductImage, error) {
	var rows []models.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sort_order ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindSizeImage returns the product's size-chart row, if any.
func (r *Repository) FindSizeImage(ctx context.Context, productID uint) (*models.ProductSizeImage, error) {
	var row models.ProductSizeImage
	if err := r.db.WithContext(ctx).First(&row, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// DeleteCascade removes the product row together with its image rows,
// size-chart row, and material attachments.
func (r *Repository) DeleteCascade(ctx context.Context, id uint) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
		return err
	}
	if err := tx.Where("product_id = ?", id).Delete(&models.ProductSizeImage{}).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM product_materials WHERE product_id = ?", id).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Product{}).Error
}
