// Package adapter holds the ledger's outbound adapters.
package adapter

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"stockflow/internal/pkg/mq"
	"stockflow/internal/service/inventory/domain"
)

// EventKafkaAdapter implements port.EventPublisher on kafka-go.
// Messages are keyed by entity id so a product's events share a partition.
type EventKafkaAdapter struct {
	writer mq.MessageWriter
}

func NewEventKafkaAdapter(writer mq.MessageWriter) *EventKafkaAdapter {
	return &EventKafkaAdapter{writer: writer}
}

func (a *EventKafkaAdapter) PublishInventoryEvent(ctx context.Context, topic string, event *domain.InventoryEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal inventory event")
	}
	return mq.ProduceMessage(ctx, a.writer, topic, []byte(strconv.FormatInt(event.ProductID, 10)), payload)
}

func (a *EventKafkaAdapter) PublishCategoryEvent(ctx context.Context, topic string, event *domain.CategoryEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal category event")
	}
	return mq.ProduceMessage(ctx, a.writer, topic, []byte(strconv.FormatInt(event.CategoryID, 10)), payload)
}
