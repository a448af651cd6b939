package saga

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"stockflow/internal/pkg/logger"
	"stockflow/internal/pkg/metrics"
	"stockflow/internal/service/order/domain"
)

// compensate releases stock best-effort and marks the order FAILED.
// Release failures are logged only; they never change the outcome.
// Compensating -> Failed.
func (o *Orchestrator) compensate(ctx context.Context, oc *OrderContext) {
	ctx, span := o.tracer.Start(ctx, "saga.compensation.ReleaseStock")
	defer span.End()

	toRelease := oc.Reserved
	if o.policy == ReleaseRequested {
		toRelease = oc.Requested
	}
	span.SetAttributes(
		attribute.String("compensation.policy", string(o.policy)),
		attribute.Int("items.release", len(toRelease)),
	)
	logger.Ctx(ctx).Warn().
		Int64("order_id", oc.Order.ID).
		Int("items", len(toRelease)).
		Str("policy", string(o.policy)).
		Msg("🔄 compensating order")

	for _, item := range toRelease {
		if o.reserver.Release(ctx, item.ProductID, item.Quantity) == nil {
			metrics.CompensationReleases.WithLabelValues("failed").Inc()
			continue
		}
		metrics.CompensationReleases.WithLabelValues("released").Inc()
		oc.Released++
	}

	o.markFailed(ctx, oc)
	oc.State = StateFailed
}

func (o *Orchestrator) markFailed(ctx context.Context, oc *OrderContext) {
	oc.Order.MarkAsFailed()
	if err := o.orders.UpdateStatus(ctx, oc.Order.ID, domain.StatusFailed); err != nil {
		logger.Ctx(ctx).Error().Err(err).Int64("order_id", oc.Order.ID).Msg("failed to mark order failed")
	}
}
