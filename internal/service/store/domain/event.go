package domain

import (
	"time"

	"stockflow/internal/pkg/apperr"
)

type EventType string

const (
	EventCreated       EventType = "CREATED"
	EventStockIncrease EventType = "STOCK_INCREASE"
	EventStockDecrease EventType = "STOCK_DECREASE"
)

// InventoryEvent is the ledger's event as the replica reads it. Unknown JSON
// fields are ignored; a missing version decodes as 0.
type InventoryEvent struct {
	EventID      string    `json:"eventId"`
	EventType    EventType `json:"eventType"`
	ProductID    int64     `json:"productId"`
	ProductName  string    `json:"productName"`
	Description  string    `json:"description"`
	NewQuantity  int       `json:"newQuantity"`
	CategoryID   int64     `json:"categoryId"`
	CategoryName string    `json:"categoryName"`
	Price        float64   `json:"price"`
	Version      int64     `json:"version"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// Validate rejects events that cannot be applied.
func (e *InventoryEvent) Validate() error {
	if e.ProductID <= 0 {
		return apperr.Validation("inventory event without productId")
	}
	if e.NewQuantity < 0 {
		return apperr.Validation("inventory event for product %d has negative quantity %d", e.ProductID, e.NewQuantity)
	}
	return nil
}

type CategoryEvent struct {
	EventID      string `json:"eventId"`
	CategoryID   int64  `json:"categoryId"`
	CategoryName string `json:"categoryName"`
}

func (e *CategoryEvent) Validate() error {
	if e.CategoryID <= 0 {
		return apperr.Validation("category event without categoryId")
	}
	return nil
}

// StockChange is pushed to live stock-feed subscribers.
type StockChange struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	Version   int64 `json:"version"`
}
