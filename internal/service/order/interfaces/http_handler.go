// Package interfaces exposes the order service over HTTP.
package interfaces

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stockflow/internal/pkg/httpx"
	"stockflow/internal/pkg/logger"
	"stockflow/internal/service/order/application"
)

// OrderHandler serves /api/orders.
type OrderHandler struct {
	service *application.OrderApplicationService
	tracer  trace.Tracer
}

func NewOrderHandler(service *application.OrderApplicationService, tracer trace.Tracer) *OrderHandler {
	return &OrderHandler{service: service, tracer: tracer}
}

func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/orders", h.createOrder)
	// /user/{userId}, /store/{storeId} and /{orderId}/items overlap as
	// ServeMux patterns, so one route dispatches all three.
	mux.HandleFunc("GET /api/orders/{first}/{second}", h.query)
}

func (h *OrderHandler) query(w http.ResponseWriter, r *http.Request) {
	switch first, second := r.PathValue("first"), r.PathValue("second"); {
	case first == "user":
		r.SetPathValue("userId", second)
		h.getOrdersByUser(w, r)
	case first == "store":
		r.SetPathValue("storeId", second)
		h.getOrdersByStore(w, r)
	case second == "items":
		r.SetPathValue("orderId", first)
		h.getItemsByOrder(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *OrderHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := httpx.StartSpan(r, h.tracer, "order-service.CreateOrder")
	defer span.End()

	var req application.CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	span.SetAttributes(attribute.Int64("store.id", req.StoreID), attribute.Int64("user.id", req.UserID))
	logger.Ctx(ctx).Info().Int64("user_id", req.UserID).Int64("store_id", req.StoreID).Msg("creating new order")

	// The saga must finish even if the client goes away mid-request.
	sagaCtx := context.WithoutCancel(ctx)
	order, items, err := h.service.PlaceOrder(sagaCtx, req)
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	resp := application.ToOrderResponse(order)
	resp.Items = application.ToOrderItemResponses(items)
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) getOrdersByUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := httpx.StartSpan(r, h.tracer, "order-service.GetOrdersByUser")
	defer span.End()

	userID, err := httpx.PathInt64(r, "userId")
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	orders, err := h.service.GetOrdersByUser(ctx, userID)
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, application.ToOrderResponses(orders))
}

func (h *OrderHandler) getOrdersByStore(w http.ResponseWriter, r *http.Request) {
	ctx, span := httpx.StartSpan(r, h.tracer, "order-service.GetOrdersByStore")
	defer span.End()

	storeID, err := httpx.PathInt64(r, "storeId")
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	orders, err := h.service.GetOrdersByStore(ctx, storeID)
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, application.ToOrderResponses(orders))
}

func (h *OrderHandler) getItemsByOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := httpx.StartSpan(r, h.tracer, "order-service.GetItemsByOrder")
	defer span.End()

	orderID, err := httpx.PathInt64(r, "orderId")
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	items, err := h.service.GetItemsByOrder(ctx, orderID)
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, application.ToOrderItemResponses(items))
}
