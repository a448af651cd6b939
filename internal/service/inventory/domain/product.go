// Package domain holds the stock ledger's entities and rules.
package domain

import (
	"strings"
	"time"

	"stockflow/internal/pkg/apperr"
)

// Product is the ledger's aggregate. Quantity never goes below zero.
type Product struct {
	ID          int64
	Name        string
	Price       float64
	CategoryID  int64
	Quantity    int
	Description string
	// Version increases by one on every ledger mutation.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProduct validates the creation input.
func NewProduct(name string, price float64, categoryID int64, quantity int, description string) (*Product, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return nil, apperr.Validation("product name is required")
	case price < 0:
		return nil, apperr.Validation("price must not be negative, got %v", price)
	case categoryID <= 0:
		return nil, apperr.Validation("categoryId is required")
	case quantity < 0:
		return nil, apperr.Validation("initial quantity must not be negative, got %d", quantity)
	}

	now := time.Now().UTC()
	return &Product{
		Name:        name,
		Price:       price,
		CategoryID:  categoryID,
		Quantity:    quantity,
		Description: description,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// AdjustQuantity applies delta, refusing any change that would make stock negative.
func (p *Product) AdjustQuantity(delta int) error {
	if p.Quantity+delta < 0 {
		return apperr.InsufficientStock(p.ID, p.Quantity, -delta)
	}
	p.Quantity += delta
	p.Version++
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// HasStock reports whether requested units are available.
func (p *Product) HasStock(requested int) bool {
	return p.Quantity >= requested
}
