package saga

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"stockflow/internal/pkg/logger"
)

// persistShell writes the order row before any stock is touched.
// Created -> Reserving, or Created -> Failed with nothing to compensate.
func (o *Orchestrator) persistShell(ctx context.Context, oc *OrderContext) {
	ctx, span := o.tracer.Start(ctx, "saga.CreateOrder")
	defer span.End()

	if err := o.orders.Create(ctx, oc.Order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist order shell failed")
		oc.Err = err
		oc.State = StateFailed
		return
	}
	span.SetAttributes(attribute.Int64("order.id", oc.Order.ID))
	logger.Ctx(ctx).Info().
		Int64("order_id", oc.Order.ID).
		Int64("store_id", oc.Order.StoreID).
		Int64("user_id", oc.Order.UserID).
		Msg("order shell saved")
	oc.State = StateReserving
}
