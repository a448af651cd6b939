// Package application implements the storefront's replica sync and queries.
package application

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stockflow/internal/pkg/logger"
	"stockflow/internal/pkg/metrics"
	"stockflow/internal/service/store/domain"
	"stockflow/internal/service/store/domain/port"
)

// SyncService applies ledger events to the local replica. Every operation is
// idempotent: events carry absolute quantities, never deltas.
type SyncService struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	notifier   port.StockNotifier
	tracer     trace.Tracer
}

// NewSyncService wires the service; notifier may be nil.
func NewSyncService(products domain.ProductRepository, categories domain.CategoryRepository, notifier port.StockNotifier, tracer trace.Tracer) *SyncService {
	return &SyncService{products: products, categories: categories, notifier: notifier, tracer: tracer}
}

// ApplyInventoryEvent upserts the product named by event. It reports whether
// the replica changed; stale versioned events are skipped.
func (s *SyncService) ApplyInventoryEvent(ctx context.Context, topic string, event *domain.InventoryEvent) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "store.ApplyInventoryEvent")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("product.id", event.ProductID),
		attribute.String("event.type", string(event.EventType)),
		attribute.Int64("event.version", event.Version),
	)

	if err := event.Validate(); err != nil {
		metrics.ReplicaEvents.WithLabelValues(topic, "invalid").Inc()
		return false, err
	}

	product, written, err := s.products.Upsert(ctx, event.ProductID, func(existing *domain.Product) (*domain.Product, bool) {
		return domain.Apply(existing, event)
	})
	if err != nil {
		span.RecordError(err)
		metrics.ReplicaEvents.WithLabelValues(topic, "error").Inc()
		return false, err
	}

	log := logger.Ctx(ctx).With().Int64("product_id", event.ProductID).Int64("version", event.Version).Str("event_id", event.EventID).Logger()
	if !written {
		metrics.ReplicaEvents.WithLabelValues(topic, "stale").Inc()
		log.Info().Int64("stored_version", product.Version).Msg("skipping stale inventory event")
		return false, nil
	}
	metrics.ReplicaEvents.WithLabelValues(topic, "applied").Inc()
	log.Info().Int("quantity", product.Quantity).Msg("inventory synced")

	if s.notifier != nil {
		s.notifier.NotifyStockChanged(ctx, domain.StockChange{ProductID: product.ID, Quantity: product.Quantity, Version: product.Version})
	}
	return true, nil
}

// ApplyCategoryEvent inserts the category or overwrites its name.
func (s *SyncService) ApplyCategoryEvent(ctx context.Context, topic string, event *domain.CategoryEvent) error {
	ctx, span := s.tracer.Start(ctx, "store.ApplyCategoryEvent")
	defer span.End()
	span.SetAttributes(attribute.Int64("category.id", event.CategoryID))

	if err := event.Validate(); err != nil {
		metrics.ReplicaEvents.WithLabelValues(topic, "invalid").Inc()
		return err
	}
	if err := s.categories.Save(ctx, &domain.Category{ID: event.CategoryID, Name: event.CategoryName}); err != nil {
		span.RecordError(err)
		metrics.ReplicaEvents.WithLabelValues(topic, "error").Inc()
		return err
	}
	metrics.ReplicaEvents.WithLabelValues(topic, "applied").Inc()
	logger.Ctx(ctx).Info().Int64("category_id", event.CategoryID).Str("name", event.CategoryName).Msg("category synced")
	return nil
}
