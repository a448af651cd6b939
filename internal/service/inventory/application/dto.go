package application

import "stockflow/internal/service/inventory/domain"

// CreateProductRequest is the input of CreateProduct.
type CreateProductRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	CategoryID  int64   `json:"categoryId"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description"`
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

type StockValidationRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type StockValidationResponse struct {
	IsValid bool `json:"isValid"`
}

// ProductResponse is the wire view of a product.
type ProductResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	CategoryID  int64   `json:"categoryId"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description"`
	Version     int64   `json:"version"`
}

type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func ToProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		CategoryID:  p.CategoryID,
		Quantity:    p.Quantity,
		Description: p.Description,
		Version:     p.Version,
	}
}

func ToProductResponses(products []*domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ToProductResponse(p))
	}
	return out
}

func ToCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name}
}
