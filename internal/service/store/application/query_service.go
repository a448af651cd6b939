package application

import (
	"context"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/pkg/logger"
	"stockflow/internal/service/store/domain"
)

// ProductResponse is the storefront's view of a product.
type ProductResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	CategoryID  int64   `json:"categoryId"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description"`
	Version     int64   `json:"version"`
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

// QueryService reads the replica.
type QueryService struct {
	products domain.ProductRepository
}

func NewQueryService(products domain.ProductRepository) *QueryService {
	return &QueryService{products: products}
}

func (s *QueryService) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Debug().Int64("product_id", productID).Msg("fetched replica product")
	return p, nil
}

// GetProductsByCategory returns NotFound when the category has no products.
func (s *QueryService) GetProductsByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error) {
	products, err := s.products.FindByCategoryID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, apperr.ReplicaNotFound("no products found for category %d", categoryID)
	}
	return products, nil
}
