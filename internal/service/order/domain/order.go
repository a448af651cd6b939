// Package domain holds the order aggregate.
package domain

import (
	"time"

	"stockflow/internal/pkg/apperr"
)

// Order is the durable anchor of one order-placement attempt. It is written
// before any stock is reserved and is never deleted, even when the attempt fails.
type Order struct {
	ID        int64
	StoreID   int64
	UserID    int64
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder builds an order shell in CREATED status.
func NewOrder(storeID, userID int64) (*Order, error) {
	if storeID <= 0 {
		return nil, apperr.Validation("storeId must be positive, got %d", storeID)
	}
	if userID <= 0 {
		return nil, apperr.Validation("userId must be positive, got %d", userID)
	}
	now := time.Now().UTC()
	return &Order{
		StoreID:   storeID,
		UserID:    userID,
		Status:    StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// MarkAsCompleted is only allowed from CREATED.
func (o *Order) MarkAsCompleted() error {
	if o.Status != StatusCreated {
		return apperr.Validation("order %d cannot complete from status %s", o.ID, o.Status)
	}
	o.Status = StatusCompleted
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (o *Order) MarkAsFailed() {
	o.Status = StatusFailed
	o.UpdatedAt = time.Now().UTC()
}

// ItemRequest is one requested line: productId x quantity.
type ItemRequest struct {
	ProductID int64
	Quantity  int
}

// ValidateItems rejects empty orders and non-positive lines.
func ValidateItems(items []ItemRequest) error {
	if len(items) == 0 {
		return apperr.Validation("order must contain at least one item")
	}
	for i, item := range items {
		if item.ProductID <= 0 {
			return apperr.Validation("item %d: productId must be positive, got %d", i, item.ProductID)
		}
		if item.Quantity <= 0 {
			return apperr.Validation("item %d: quantity must be positive, got %d", i, item.Quantity)
		}
	}
	return nil
}

// OrderItem is a reserved line. Items only exist for reservations that succeeded.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
}

func NewOrderItems(orderID int64, reserved []ItemRequest) []*OrderItem {
	out := make([]*OrderItem, 0, len(reserved))
	for _, r := range reserved {
		out = append(out, &OrderItem{OrderID: orderID, ProductID: r.ProductID, Quantity: r.Quantity})
	}
	return out
}
