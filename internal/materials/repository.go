package material

import (
	"context"

	"github.com/breaddesk/breaddesk-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles material persistence.
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

// List returns all materials with their product counts, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Material, error) {
	var rows []models.Material
	err := r.db.WithContext(ctx).
		Model(&models.Material{}).
		Select("materials.*, (SELECT COUNT(*) FROM product_materials pm WHERE pm.material_id = materials.id) AS product_count").
		Order("materials.id DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads the material without associations.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Material, error) {
	var row models.Material
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByIDs loads every material whose ID appears in ids.
func (r *Repository) FindByIDs(ctx context.Context, ids []uint) ([]models.Material, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Material
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts a new material row.
func (r *Repository) Create(ctx context.Context, material *models.Material) (*models.Material, error) {
	if err := r.db.WithContext(ctx).Create(material).Error; err != nil {
		return nil, err
	}
	return material, nil
}

// Update saves an existing material row.
func (r *Repository) Update(ctx context.Context, material *models.Material) (*models.Material, error) {
	if err := r.db.WithContext(ctx).Save(material).Error; err != nil {
		return nil, err
	}
	return material, nil
}

// Delete removes the material and its product attachments.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Exec("DELETE FROM product_materials WHERE material_id = ?", id).
		Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Material{}).Error
}
