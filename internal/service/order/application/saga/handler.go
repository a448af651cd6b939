// Package saga runs order placement as an explicit state machine:
//
//	Created -> Reserving -> ItemsPersisted
//	                     \-> Compensating -> Failed
//	Created -> Failed (shell could not be persisted)
//
// Each call to Step performs exactly one transition.
package saga

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/pkg/logger"
	"stockflow/internal/pkg/metrics"
	"stockflow/internal/service/order/domain"
	"stockflow/internal/service/order/domain/port"
)

// State tags the saga's current position.
type State string

const (
	StateCreated        State = "CREATED"
	StateReserving      State = "RESERVING"
	StateItemsPersisted State = "ITEMS_PERSISTED"
	StateCompensating   State = "COMPENSATING"
	StateFailed         State = "FAILED"
)

// Terminal reports whether no further Step is possible.
func (s State) Terminal() bool {
	return s == StateItemsPersisted || s == StateFailed
}

// CompensationPolicy selects which items a failed saga gives back.
type CompensationPolicy string

const (
	// ReleaseReserved releases exactly the items the reservation client reported as decreased.
	ReleaseReserved CompensationPolicy = "reserved-only"
	// ReleaseRequested releases every requested item, tolerating over-compensation.
	ReleaseRequested CompensationPolicy = "all-requested"
)

// Reserver is the reservation client as seen by the saga.
type Reserver interface {
	Reserve(ctx context.Context, items []domain.ItemRequest) ([]domain.ItemRequest, error)
	Release(ctx context.Context, productID int64, quantity int) *port.Product
}

// OrderContext is the value threaded through Step.
type OrderContext struct {
	State State
	Order *domain.Order
	// Requested is the order's item list, in reservation order.
	Requested []domain.ItemRequest
	// Reserved is the prefix of Requested whose stock was decreased.
	Reserved []domain.ItemRequest
	// Items holds the persisted OrderItems once the saga succeeds.
	Items []*domain.OrderItem
	// Released counts successful compensating releases.
	Released int
	// Err is the first failure; it decides the saga's outcome.
	Err error
}

// NewOrderContext starts a saga in Created.
func NewOrderContext(order *domain.Order, items []domain.ItemRequest) *OrderContext {
	return &OrderContext{State: StateCreated, Order: order, Requested: items}
}

// Orchestrator owns the saga's collaborators.
type Orchestrator struct {
	orders   domain.OrderRepository
	items    domain.ItemRepository
	reserver Reserver
	policy   CompensationPolicy
	tracer   trace.Tracer
}

func NewOrchestrator(
	orders domain.OrderRepository,
	items domain.ItemRepository,
	reserver Reserver,
	policy CompensationPolicy,
	tracer trace.Tracer,
) *Orchestrator {
	if policy == "" {
		policy = ReleaseReserved
	}
	return &Orchestrator{orders: orders, items: items, reserver: reserver, policy: policy, tracer: tracer}
}

// Step performs the transition out of oc.State. It is a no-op in terminal states.
func (o *Orchestrator) Step(ctx context.Context, oc *OrderContext) {
	from := oc.State
	switch oc.State {
	case StateCreated:
		o.persistShell(ctx, oc)
	case StateReserving:
		o.reserve(ctx, oc)
	case StateCompensating:
		o.compensate(ctx, oc)
	default:
		return
	}
	logger.Ctx(ctx).Debug().
		Int64("order_id", oc.Order.ID).
		Str("from", string(from)).
		Str("to", string(oc.State)).
		Msg("saga transition")
}

// Run steps oc until it reaches a terminal state. The returned error is nil
// on success and always an OrderNotCompleted otherwise.
func (o *Orchestrator) Run(ctx context.Context, oc *OrderContext) error {
	ctx, span := o.tracer.Start(ctx, "saga.PlaceOrder")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("store.id", oc.Order.StoreID),
		attribute.Int64("user.id", oc.Order.UserID),
		attribute.Int("items.count", len(oc.Requested)),
	)

	start := time.Now()
	for !oc.State.Terminal() {
		o.Step(ctx, oc)
	}
	metrics.SagaDuration.Observe(time.Since(start).Seconds())
	metrics.SagaOutcomes.WithLabelValues(string(oc.State)).Inc()
	span.SetAttributes(attribute.Int64("order.id", oc.Order.ID), attribute.String("saga.state", string(oc.State)))

	if oc.State == StateItemsPersisted {
		return nil
	}
	err := apperr.OrderNotCompleted(oc.Err, "could not complete order %d for user %d at store %d",
		oc.Order.ID, oc.Order.UserID, oc.Order.StoreID)
	span.RecordError(err)
	span.SetStatus(codes.Error, "order not completed")
	logger.Ctx(ctx).Error().Err(err).Str("code", err.Code).Int64("order_id", oc.Order.ID).Msg("❌ order not completed")
	return err
}
