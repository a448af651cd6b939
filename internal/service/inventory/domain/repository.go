package domain

import "context"

// ProductRepository persists products. Update is the only path that mutates
// quantity: it loads the row under a row lock, applies fn and saves the
// result in one transaction. An error from fn aborts without writing.
type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id int64) (*Product, error)
	FindByCategoryID(ctx context.Context, categoryID int64) ([]*Product, error)
	Update(ctx context.Context, id int64, fn func(p *Product) error) (*Product, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, id int64) (*Category, error)
}
