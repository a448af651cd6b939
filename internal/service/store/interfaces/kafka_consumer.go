package interfaces

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/pkg/mq"
	"stockflow/internal/service/store/application"
	"stockflow/internal/service/store/domain"
)

// ReplicaHandlers turns ledger messages into replica updates. A returned
// error sends the message to the dead-letter topic.
type ReplicaHandlers struct {
	sync *application.SyncService
}

func NewReplicaHandlers(sync *application.SyncService) *ReplicaHandlers {
	return &ReplicaHandlers{sync: sync}
}

// Inventory handles both new-inventory and inventory-updated messages.
func (h *ReplicaHandlers) Inventory() mq.HandlerFunc {
	return func(ctx context.Context, msg kafka.Message) error {
		var event domain.InventoryEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return apperr.Validation("undecodable inventory event at %s/%d/%d: %v", msg.Topic, msg.Partition, msg.Offset, err)
		}
		_, err := h.sync.ApplyInventoryEvent(ctx, msg.Topic, &event)
		return err
	}
}

func (h *ReplicaHandlers) Category() mq.HandlerFunc {
	return func(ctx context.Context, msg kafka.Message) error {
		var event domain.CategoryEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return apperr.Validation("undecodable category event at %s/%d/%d: %v", msg.Topic, msg.Partition, msg.Offset, err)
		}
		return h.sync.ApplyCategoryEvent(ctx, msg.Topic, &event)
	}
}
