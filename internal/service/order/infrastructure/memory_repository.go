package infrastructure

import (
	"context"
	"sort"
	"sync"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/service/order/domain"
)

// MemoryOrderRepository keeps orders in process.
type MemoryOrderRepository struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]domain.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[int64]domain.Order)}
}

func (r *MemoryOrderRepository) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	o.ID = r.nextID
	r.orders[o.ID] = *o
	return nil
}

func (r *MemoryOrderRepository) UpdateStatus(_ context.Context, id int64, status domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return apperr.OrderNotFound("order %d not found", id)
	}
	o.Status = status
	r.orders[id] = o
	return nil
}

func (r *MemoryOrderRepository) FindByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, apperr.OrderNotFound("order %d not found", id)
	}
	return &o, nil
}

func (r *MemoryOrderRepository) FindByUserID(_ context.Context, userID int64) ([]*domain.Order, error) {
	return r.filter(func(o domain.Order) bool { return o.UserID == userID }), nil
}

func (r *MemoryOrderRepository) FindByStoreID(_ context.Context, storeID int64) ([]*domain.Order, error) {
	return r.filter(func(o domain.Order) bool { return o.StoreID == storeID }), nil
}

func (r *MemoryOrderRepository) filter(keep func(domain.Order) bool) []*domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Order, 0)
	for _, o := range r.orders {
		if keep(o) {
			o := o
			out = append(out, &o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MemoryItemRepository keeps order items in process. Err, when set, fails SaveAll.
type MemoryItemRepository struct {
	mu     sync.Mutex
	nextID int64
	items  []domain.OrderItem
	Err    error
}

func NewMemoryItemRepository() *MemoryItemRepository {
	return &MemoryItemRepository{}
}

func (r *MemoryItemRepository) SaveAll(_ context.Context, items []*domain.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, it := range items {
		r.nextID++
		it.ID = r.nextID
		r.items = append(r.items, *it)
	}
	return nil
}

func (r *MemoryItemRepository) FindByOrderID(_ context.Context, orderID int64) ([]*domain.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.OrderItem, 0)
	for _, it := range r.items {
		if it.OrderID == orderID {
			it := it
			out = append(out, &it)
		}
	}
	return out, nil
}
