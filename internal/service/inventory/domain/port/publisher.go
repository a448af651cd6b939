package port

import (
	"context"

	"stockflow/internal/service/inventory/domain"
)

// EventPublisher is the outbound port to the event bus.
type EventPublisher interface {
	PublishInventoryEvent(ctx context.Context, topic string, event *domain.InventoryEvent) error
	PublishCategoryEvent(ctx context.Context, topic string, event *domain.CategoryEvent) error
}
