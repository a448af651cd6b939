package infrastructure

import "stockflow/internal/service/inventory/domain"

func toDomainProduct(m *ProductModel) *domain.Product {
	return &domain.Product{
		ID:          m.ID,
		Name:        m.Name,
		Price:       m.Price,
		CategoryID:  m.CategoryID,
		Quantity:    m.Quantity,
		Description: m.Description,
		Version:     m.Version,
		CreatedAt:   m.CreatedAt,
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
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toDomainCategory(m *CategoryModel) *domain.Category {
	return &domain.Category{ID: m.ID, Name: m.Name}
}
