package port

import (
	"context"

	"stockflow/internal/service/order/domain"
)

// AdmissionPolicy decides whether an order request may start a saga.
type AdmissionPolicy interface {
	Admit(ctx context.Context, order *domain.Order, items []domain.ItemRequest) error
}
