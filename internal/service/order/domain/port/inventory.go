package port

import "context"

// Product is the inventory service's view of a product after a mutation.
type Product struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	CategoryID int64   `json:"categoryId"`
	Quantity   int     `json:"quantity"`
	Version    int64   `json:"version"`
}

// InventoryBackend is the outbound port to the stock ledger.
type InventoryBackend interface {
	ValidateStock(ctx context.Context, productID int64, quantity int) (bool, error)
	Increase(ctx context.Context, productID int64, amount int) (*Product, error)
	Decrease(ctx context.Context, productID int64, amount int) (*Product, error)
}
