package infrastructure

import (
	"context"
	"sort"
	"sync"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/service/inventory/domain"
)

// MemoryProductRepository keeps products in process; Update is atomic under one mutex.
type MemoryProductRepository struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]domain.Product
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{products: make(map[int64]domain.Product)}
}

// Create keeps a caller-assigned ID, otherwise assigns the next one.
func (r *MemoryProductRepository) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		r.nextID++
		p.ID = r.nextID
	} else if p.ID > r.nextID {
		r.nextID = p.ID
	}
	r.products[p.ID] = *p
	return nil
}

func (r *MemoryProductRepository) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, apperr.ProductNotFound(id)
	}
	return &p, nil
}

func (r *MemoryProductRepository) FindByCategoryID(_ context.Context, categoryID int64) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Product, 0)
	for _, p := range r.products {
		if p.CategoryID == categoryID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryProductRepository) Update(_ context.Context, id int64, fn func(p *domain.Product) error) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, apperr.ProductNotFound(id)
	}
	if err := fn(&p); err != nil {
		return nil, err
	}
	r.products[id] = p
	return &p, nil
}

type MemoryCategoryRepository struct {
	mu         sync.Mutex
	nextID     int64
	categories map[int64]domain.Category
}

func NewMemoryCategoryRepository() *MemoryCategoryRepository {
	return &MemoryCategoryRepository{categories: make(map[int64]domain.Category)}
}

func (r *MemoryCategoryRepository) Create(_ context.Context, c *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == 0 {
		r.nextID++
		c.ID = r.nextID
	} else if c.ID > r.nextID {
		r.nextID = c.ID
	}
	r.categories[c.ID] = *c
	return nil
}

func (r *MemoryCategoryRepository) FindByID(_ context.Context, id int64) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, apperr.CategoryNotFound(id)
	}
	return &c, nil
}
