// Package application implements the order use cases.
package application

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/pkg/logger"
	"stockflow/internal/service/order/application/saga"
	"stockflow/internal/service/order/domain"
	"stockflow/internal/service/order/domain/port"
)

// OrderApplicationService places orders through the saga and answers order queries.
type OrderApplicationService struct {
	orders    domain.OrderRepository
	items     domain.ItemRepository
	saga      *saga.Orchestrator
	admission port.AdmissionPolicy
	events    port.OrderEventPublisher
	tracer    trace.Tracer
}

// NewOrderApplicationService wires the service; events may be nil.
func NewOrderApplicationService(
	orders domain.OrderRepository,
	items domain.ItemRepository,
	orchestrator *saga.Orchestrator,
	admission port.AdmissionPolicy,
	events port.OrderEventPublisher,
	tracer trace.Tracer,
) *OrderApplicationService {
	return &OrderApplicationService{
		orders:    orders,
		items:     items,
		saga:      orchestrator,
		admission: admission,
		events:    events,
		tracer:    tracer,
	}
}

// PlaceOrder validates and admits the request, then runs the saga to completion.
// Input errors are returned as ValidationFailed before any order row exists;
// saga failures come back as OrderNotCompleted.
func (s *OrderApplicationService) PlaceOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, []*domain.OrderItem, error) {
	ctx, span := s.tracer.Start(ctx, "app.PlaceOrder")
	defer span.End()
	span.SetAttributes(attribute.Int64("store.id", req.StoreID), attribute.Int64("user.id", req.UserID))

	order, err := domain.NewOrder(req.StoreID, req.UserID)
	if err != nil {
		return nil, nil, err
	}
	items := req.itemRequests()
	if err := domain.ValidateItems(items); err != nil {
		return nil, nil, err
	}
	if s.admission != nil {
		if err := s.admission.Admit(ctx, order, items); err != nil {
			span.RecordError(err)
			return nil, nil, err
		}
	}

	logger.Ctx(ctx).Info().Int64("store_id", req.StoreID).Int64("user_id", req.UserID).Int("items", len(items)).Msg("creating new order")

	oc := saga.NewOrderContext(order, items)
	runErr := s.saga.Run(ctx, oc)
	s.announce(ctx, oc, runErr)
	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, "order not completed")
		return oc.Order, nil, runErr
	}
	return oc.Order, oc.Items, nil
}

func (s *OrderApplicationService) announce(ctx context.Context, oc *saga.OrderContext, runErr error) {
	if s.events == nil || oc.Order.ID == 0 {
		return
	}
	reason := ""
	if runErr != nil {
		reason = runErr.Error()
	}
	if err := s.events.PublishOrderEvent(ctx, domain.NewOrderEvent(oc.Order, oc.Items, reason)); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Int64("order_id", oc.Order.ID).Msg("failed to publish order event")
	}
}

// GetOrdersByUser returns NotFound when the user has no orders.
func (s *OrderApplicationService) GetOrdersByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	logger.Ctx(ctx).Info().Int64("user_id", userID).Msg("fetching orders for user")
	orders, err := s.orders.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, apperr.OrderNotFound("no orders found for user %d", userID)
	}
	return orders, nil
}

// GetOrdersByStore returns NotFound when the store has no orders.
func (s *OrderApplicationService) GetOrdersByStore(ctx context.Context, storeID int64) ([]*domain.Order, error) {
	logger.Ctx(ctx).Info().Int64("store_id", storeID).Msg("fetching orders for store")
	orders, err := s.orders.FindByStoreID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, apperr.OrderNotFound("no orders found for store %d", storeID)
	}
	return orders, nil
}

// GetItemsByOrder returns NotFound for unknown orders and a possibly empty list otherwise.
func (s *OrderApplicationService) GetItemsByOrder(ctx context.Context, orderID int64) ([]*domain.OrderItem, error) {
	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.items.FindByOrderID(ctx, orderID)
}
