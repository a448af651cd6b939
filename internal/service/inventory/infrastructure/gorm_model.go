package infrastructure

import "time"

// ProductModel maps the products table.
type ProductModel struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	Name        string  `gorm:"size:255;not null"`
	Price       float64 `gorm:"type:decimal(12,2)"`
	CategoryID  int64   `gorm:"index"`
	Quantity    int     `gorm:"not null;check:quantity >= 0"`
	Description string  `gorm:"type:text"`
	Version     int64   `gorm:"not null;default:1"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ProductModel) TableName() string {
	return "products"
}

// CategoryModel maps the categories table.
type CategoryModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"size:255;not null"`
	CreatedAt time.Time
}

func (CategoryModel) TableName() string {
	return "categories"
}
