package domain

import "context"

// OrderRepository persists order shells and their status.
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	FindByID(ctx context.Context, id int64) (*Order, error)
	FindByUserID(ctx context.Context, userID int64) ([]*Order, error)
	FindByStoreID(ctx context.Context, storeID int64) ([]*Order, error)
}

// ItemRepository persists order items.
type ItemRepository interface {
	// SaveAll stores every item or none of them.
	SaveAll(ctx context.Context, items []*OrderItem) error
	FindByOrderID(ctx context.Context, orderID int64) ([]*OrderItem, error)
}
