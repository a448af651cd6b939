package infrastructure

import (
	"time"

	"stockflow/internal/service/store/domain"
)

// ProductModel maps the storefront's replica table. IDs come from the ledger.
type ProductModel struct {
	ID          int64   `gorm:"primaryKey;autoIncrement:false"`
	Name        string  `gorm:"size:255"`
	Price       float64 `gorm:"type:decimal(12,2)"`
	CategoryID  int64   `gorm:"index"`
	Quantity    int     `gorm:"not null"`
	Description string  `gorm:"type:text"`
	Version     int64   `gorm:"not null;default:0"`
	UpdatedAt   time.Time
}

func (ProductModel) TableName() string {
	return "store_products"
}

type CategoryModel struct {
	ID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"size:255"`
}

func (CategoryModel) TableName() string {
	return "store_categories"
}

func toDomainProduct(m *ProductModel) *domain.Product {
	return &domain.Product{
		ID:          m.ID,
		Name:        m.Name,
		Price:       m.Price,
		CategoryID:  m.CategoryID,
		Quantity:    m.Quantity,
		Description: m.Description,
		Version:     m.Version,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromDomainProduct(p *domain.Product) *ProductModel {
	return &ProductModel{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		CategoryID:  p.CategoryID,
		Quantity:    p.Quantity,
		Description: p.Description,
		Version:     p.Version,
		UpdatedAt:   p.UpdatedAt,
	}
}
