package domain

import "context"

// ApplyFunc decides the new row from the current one (nil when absent);
// returning false leaves storage untouched.
type ApplyFunc func(existing *Product) (*Product, bool)

type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*Product, error)
	FindByCategoryID(ctx context.Context, categoryID int64) ([]*Product, error)
	// Upsert reads, decides and writes one product atomically.
	Upsert(ctx context.Context, id int64, fn ApplyFunc) (*Product, bool, error)
}

type CategoryRepository interface {
	// Save inserts the category or overwrites its name.
	Save(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, id int64) (*Category, error)
}
