package models

import "time"

// ProductImage is one gallery image of a product. sort_order drives display
// order; values need not be contiguous or unique.
type ProductImage struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProductID uint      `gorm:"column:product_id;not null;index" json:"product_id"`
	ImageKey  string    `gorm:"column:image_key;not null" json:"-"`
	ImageURL  string    `gorm:"column:image_url;not null" json:"image_url"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ProductImage) TableName() string { return "product_images" }
