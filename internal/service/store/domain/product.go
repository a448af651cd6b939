// Package domain holds the storefront's read replica of the inventory.
package domain

import "time"

// Product is the replica row. It mirrors the ledger and is never the source of truth.
type Product struct {
	ID          int64
	Name        string
	Price       float64
	CategoryID  int64
	Quantity    int
	Description string
	// Version is the ledger version of the last applied event; 0 if unknown.
	Version   int64
	UpdatedAt time.Time
}

type Category struct {
	ID   int64
	Name string
}

// Apply folds event into the replica row and reports whether anything must be
// written. existing is nil when the product is not yet replicated.
//
// Events whose version is not newer than the stored one are skipped. Events
// without a version (0) always overwrite, so replaying an older unversioned
// event after a newer one moves the quantity backwards.
func Apply(existing *Product, e *InventoryEvent) (*Product, bool) {
	if existing == nil {
		return fromEvent(e), true
	}
	if e.Version != 0 && existing.Version != 0 && e.Version <= existing.Version {
		return existing, false
	}

	next := *existing
	if e.EventType == EventCreated {
		next = *fromEvent(e)
	} else {
		next.Quantity = e.NewQuantity
		if e.Version != 0 {
			next.Version = e.Version
		}
		next.UpdatedAt = time.Now().UTC()
	}
	return &next, true
}

func fromEvent(e *InventoryEvent) *Product {
	return &Product{
		ID:          e.ProductID,
		Name:        e.ProductName,
		Price:       e.Price,
		CategoryID:  e.CategoryID,
		Quantity:    e.NewQuantity,
		Description: e.Description,
		Version:     e.Version,
		UpdatedAt:   time.Now().UTC(),
	}
}
