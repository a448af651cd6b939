package port

import (
	"context"

	"stockflow/internal/service/order/domain"
)

// OrderEventPublisher announces order outcomes. Publishing is best-effort.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event *domain.OrderEvent) error
}
