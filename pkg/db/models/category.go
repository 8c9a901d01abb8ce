package models

import "time"

// Category groups catalog products for browsing.
type Category struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex:categories_slug_key"`
	Name        string    `gorm:"column:name;not null"`
	Description *string   `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
