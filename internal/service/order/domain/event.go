package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderEvent announces the terminal outcome of an order-placement attempt.
type OrderEvent struct {
	EventID    string           `json:"eventId"`
	OrderID    int64            `json:"orderId"`
	StoreID    int64            `json:"storeId"`
	UserID     int64            `json:"userId"`
	Status     Status           `json:"status"`
	Items      []OrderEventItem `json:"items"`
	Reason     string           `json:"reason,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}

type OrderEventItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// NewOrderEvent snapshots order and its persisted items. reason is empty on success.
func NewOrderEvent(order *Order, items []*OrderItem, reason string) *OrderEvent {
	lines := make([]OrderEventItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, OrderEventItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return &OrderEvent{
		EventID:    uuid.NewString(),
		OrderID:    order.ID,
		StoreID:    order.StoreID,
		UserID:     order.UserID,
		Status:     order.Status,
		Items:      lines,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}
