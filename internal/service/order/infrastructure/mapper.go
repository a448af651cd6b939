package infrastructure

import "stockflow/internal/service/order/domain"

func toDomainOrder(m *OrderModel) *domain.Order {
	return &domain.Order{
		ID:        m.ID,
		StoreID:   m.StoreID,
		UserID:    m.UserID,
		Status:    domain.Status(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromDomainOrder(o *domain.Order) *OrderModel {
	return &OrderModel{
		ID:        o.ID,
		StoreID:   o.StoreID,
		UserID:    o.UserID,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toDomainOrders(models []OrderModel) []*domain.Order {
	out := make([]*domain.Order, 0, len(models))
	for i := range models {
		out = append(out, toDomainOrder(&models[i]))
	}
	return out
}

func toDomainItem(m *OrderItemModel) *domain.OrderItem {
	return &domain.OrderItem{ID: m.ID, OrderID: m.OrderID, ProductID: m.ProductID, Quantity: m.Quantity}
}
