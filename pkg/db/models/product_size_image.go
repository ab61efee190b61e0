package models

import "time"

// ProductSizeImage is the single size-chart image of a product. The unique
// index on product_id is the backstop for the one-per-product invariant.
type ProductSizeImage struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProductID uint      `gorm:"column:product_id;not null;uniqueIndex:idx_product_size_images_product_id" json:"product_id"`
	ImageKey  string    `gorm:"column:image_key;not null" json:"-"`
	ImageURL  string    `gorm:"column:image_url;not null" json:"image_url"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ProductSizeImage) TableName() string { return "product_size_images" }
