package adapter

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockflow/internal/service/inventory/domain"
)

type captureWriter struct {
	msgs []kafka.Message
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestPublishInventoryEventKeysByProduct(t *testing.T) {
	w := &captureWriter{}
	a := NewEventKafkaAdapter(w)
	evt := domain.NewInventoryEvent(domain.EventStockDecrease, &domain.Product{ID: 42, Name: "Lamp", Quantity: 2, Version: 3}, "Home")

	require.NoError(t, a.PublishInventoryEvent(context.Background(), "inventory-updated", evt))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "inventory-updated", msg.Topic)
	assert.Equal(t, "42", string(msg.Key))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "STOCK_DECREASE", decoded["eventType"])
	assert.Equal(t, float64(2), decoded["newQuantity"])
	assert.Equal(t, float64(42), decoded["productId"])
	assert.Equal(t, "Home", decoded["categoryName"])
	assert.Equal(t, float64(3), decoded["version"])
}

func TestPublishCategoryEventKeysByCategory(t *testing.T) {
	w := &captureWriter{}

	err := NewEventKafkaAdapter(w).PublishCategoryEvent(context.Background(), "new-category", domain.NewCategoryEvent(&domain.Category{ID: 5, Name: "Toys"}))

	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "5", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"eventId":"`+mustEventID(t, w.msgs[0].Value)+`","categoryId":5,"categoryName":"Toys"}`, string(w.msgs[0].Value))
}

func mustEventID(t *testing.T, raw []byte) string {
	var v struct {
		EventID string `json:"eventId"`
	}
	require.NoError(t, json.Unmarshal(raw, &v))
	return v.EventID
}
