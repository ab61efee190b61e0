package models

import "time"

// Category groups products for the storefront navigation. A category owns at
// most one display image; the blob key rides next to the public URL so deletes
// never have to parse the URL.
type Category struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CategoryName string    `gorm:"column:category_name;not null" json:"category_name"`
	ImageKey     *string   `gorm:"column:image_key" json:"-"`
	ImageURL     *string   `gorm:"column:image_url" json:"image_url"`
	Products     []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Populated by list queries, not a real column.
	ProductCount int64 `gorm:"column:product_count;->;-:migration" json:"product_count"`
}

func (Category) TableName() string { return "categories" }
