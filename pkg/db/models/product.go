package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is a catalog listing. Price is BRL with two decimal places.
type Product struct {
	ID             int64            `gorm:"column:id;primaryKey;autoIncrement"`
	CategoryID     *int64           `gorm:"column:category_id;index:products_category_id_idx"`
	Category       *Category        `gorm:"foreignKey:CategoryID"`
	Slug           string           `gorm:"column:slug;not null;uniqueIndex:products_slug_key"`
	Name           string           `gorm:"column:name;not null"`
	Description    string           `gorm:"column:description;not null;default:''"`
	Price          decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	CompareAtPrice *decimal.Decimal `gorm:"column:compare_at_price;type:numeric(12,2)"`
	ImageURL       string           `gorm:"column:image_url;not null;default:''"`
	Gallery        pq.StringArray   `gorm:"column:gallery;type:text[];not null;default:'{}'"`
	Stock          int              `gorm:"column:stock;not null;default:0"`
	IsActive       bool             `gorm:"column:is_active;not null"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
