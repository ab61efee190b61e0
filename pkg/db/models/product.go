package models

import "time"

// Product is the canonical catalog listing. product_code is unique across the
// whole table; category_id must reference an existing category but is not
// FK-cascaded on category delete (the source system orphans products).
type Product struct {
	ID           uint              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProductName  string            `gorm:"column:product_name;not null" json:"product_name"`
	ProductCode  string            `gorm:"column:product_code;not null;uniqueIndex:idx_products_product_code" json:"product_code"`
	CategoryID   uint              `gorm:"column:category_id;not null" json:"category_id"`
	Description  *string           `gorm:"column:description" json:"description"`
	Color        *string           `gorm:"column:color" json:"color"`
	Finishing    *string           `gorm:"column:finishing" json:"finishing"`
	ShopeeURL    *string           `gorm:"column:shopee_url" json:"shopee_url"`
	TokopediaURL *string           `gorm:"column:tokopedia_url" json:"tokopedia_url"`
	Category     *Category         `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Materials    []Material        `gorm:"many2many:product_materials" json:"materials,omitempty"`
	Images       []ProductImage    `gorm:"foreignKey:ProductID" json:"images,omitempty"`
	SizeImage    *ProductSizeImage `gorm:"foreignKey:ProductID" json:"size_image,omitempty"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string { return "products" }
