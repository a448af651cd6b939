package application

import (
	"time"

	"stockflow/internal/service/order/domain"
)

// CreateOrderRequest is the body of POST /api/orders.
type CreateOrderRequest struct {
	StoreID int64              `json:"storeId"`
	UserID  int64              `json:"userId"`
	Items   []OrderItemRequest `json:"items"`
}

type OrderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func (r CreateOrderRequest) itemRequests() []domain.ItemRequest {
	out := make([]domain.ItemRequest, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, domain.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

// OrderResponse is the wire view of an order.
type OrderResponse struct {
	ID        int64         `json:"id"`
	StoreID   int64         `json:"storeId"`
	UserID    int64         `json:"userId"`
	Status    domain.Status `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	// Items is only filled in the answer to CreateOrder.
	Items []OrderItemResponse `json:"items,omitempty"`
}

type OrderItemResponse struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"orderId"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func ToOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{ID: o.ID, StoreID: o.StoreID, UserID: o.UserID, Status: o.Status, CreatedAt: o.CreatedAt}
}

func ToOrderResponses(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToOrderResponse(o))
	}
	return out
}

func ToOrderItemResponses(items []*domain.OrderItem) []OrderItemResponse {
	out := make([]OrderItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, OrderItemResponse{ID: it.ID, OrderID: it.OrderID, ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}
