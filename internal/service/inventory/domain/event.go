package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType tags an InventoryEvent.
type EventType string

const (
	EventCreated       EventType = "CREATED"
	EventStockIncrease EventType = "STOCK_INCREASE"
	EventStockDecrease EventType = "STOCK_DECREASE"
)

// InventoryEvent is published once per ledger mutation. NewQuantity is the
// absolute quantity after the mutation, never a delta.
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

func NewInventoryEvent(eventType EventType, p *Product, categoryName string) *InventoryEvent {
	return &InventoryEvent{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		ProductID:    p.ID,
		ProductName:  p.Name,
		Description:  p.Description,
		NewQuantity:  p.Quantity,
		CategoryID:   p.CategoryID,
		CategoryName: categoryName,
		Price:        p.Price,
		Version:      p.Version,
		OccurredAt:   p.UpdatedAt,
	}
}

// CategoryEvent is published once per category creation.
type CategoryEvent struct {
	EventID      string `json:"eventId"`
	CategoryID   int64  `json:"categoryId"`
	CategoryName string `json:"categoryName"`
}

func NewCategoryEvent(c *Category) *CategoryEvent {
	return &CategoryEvent{EventID: uuid.NewString(), CategoryID: c.ID, CategoryName: c.Name}
}
