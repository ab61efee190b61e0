package models

import "time"

// Material is a fabrication material, many-to-many with products through
// product_materials.
type Material struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MaterialName string    `gorm:"column:material_name;not null" json:"material_name"`
	Products     []Product `gorm:"many2many:product_materials" json:"products,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Populated by list queries, not a real column.
	ProductCount int64 `gorm:"column:product_count;->;-:migration" json:"product_count"`
}

func (Material) TableName() string { return "materials" }
