package saga

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"stockflow/internal/pkg/logger"
	"stockflow/internal/service/order/domain"
)

// reserve takes stock for every item and then persists the items atomically.
// Reserving -> ItemsPersisted, or Reserving -> Compensating.
func (o *Orchestrator) reserve(ctx context.Context, oc *OrderContext) {
	ctx, span := o.tracer.Start(ctx, "saga.InventoryReserve")
	defer span.End()

	reserved, err := o.reserver.Reserve(ctx, oc.Requested)
	oc.Reserved = reserved
	span.SetAttributes(attribute.Int("items.reserved", len(reserved)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "inventory reservation failed")
		oc.Err = err
		oc.State = StateCompensating
		return
	}

	items := domain.NewOrderItems(oc.Order.ID, reserved)
	if err := o.items.SaveAll(ctx, items); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist order items failed")
		logger.Ctx(ctx).Error().Err(err).Int64("order_id", oc.Order.ID).Msg("failed saving order items, rolling back inventory")
		oc.Err = err
		oc.State = StateCompensating
		return
	}
	oc.Items = items

	if err := oc.Order.MarkAsCompleted(); err == nil {
		if err := o.orders.UpdateStatus(ctx, oc.Order.ID, oc.Order.Status); err != nil {
			// Items are the record of the reservation; a stale status does not undo it.
			span.RecordError(err)
			logger.Ctx(ctx).Error().Err(err).Int64("order_id", oc.Order.ID).Msg("failed to mark order completed")
		}
	}
	logger.Ctx(ctx).Info().Int64("order_id", oc.Order.ID).Int("items", len(items)).Msg("✅ order completed")
	oc.State = StateItemsPersisted
}
