package infrastructure

import (
	"context"
	"sort"
	"sync"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/service/store/domain"
)

type MemoryProductRepository struct {
	mu       sync.Mutex
	products map[int64]domain.Product
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{products: make(map[int64]domain.Product)}
}

func (r *MemoryProductRepository) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, apperr.ReplicaNotFound("product %d not found", id)
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

func (r *MemoryProductRepository) Upsert(_ context.Context, id int64, fn domain.ApplyFunc) (*domain.Product, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var existing *domain.Product
	if p, ok := r.products[id]; ok {
		existing = &p
	}
	next, write := fn(existing)
	if write {
		r.products[id] = *next
	}
	return next, write, nil
}

type MemoryCategoryRepository struct {
	mu         sync.Mutex
	categories map[int64]domain.Category
}

func NewMemoryCategoryRepository() *MemoryCategoryRepository {
	return &MemoryCategoryRepository{categories: make(map[int64]domain.Category)}
}

func (r *MemoryCategoryRepository) Save(_ context.Context, c *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[c.ID] = *c
	return nil
}

func (r *MemoryCategoryRepository) FindByID(_ context.Context, id int64) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, apperr.ReplicaNotFound("category %d not found", id)
	}
	return &c, nil
}
