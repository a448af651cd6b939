package adapter

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"stockflow/internal/pkg/mq"
	"stockflow/internal/service/order/domain"
)

// OrderEventKafkaAdapter implements port.OrderEventPublisher, keyed by user id.
type OrderEventKafkaAdapter struct {
	writer mq.MessageWriter
	topic  string
}

func NewOrderEventKafkaAdapter(writer mq.MessageWriter, topic string) *OrderEventKafkaAdapter {
	return &OrderEventKafkaAdapter{writer: writer, topic: topic}
}

func (a *OrderEventKafkaAdapter) PublishOrderEvent(ctx context.Context, event *domain.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal order event")
	}
	return mq.ProduceMessage(ctx, a.writer, a.topic, []byte(strconv.FormatInt(event.UserID, 10)), payload)
}
