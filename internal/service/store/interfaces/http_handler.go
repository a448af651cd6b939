// Package interfaces exposes the storefront: replica queries, the order
// proxy, the stock feed and the replica consumers.
package interfaces

import (
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/pkg/httpx"
	"stockflow/internal/pkg/logger"
	"stockflow/internal/service/store/application"
	"stockflow/internal/service/store/domain/port"
)

type StoreHandler struct {
	query  *application.QueryService
	orders port.OrderGateway
	tracer trace.Tracer
}

func NewStoreHandler(query *application.QueryService, orders port.OrderGateway, tracer trace.Tracer) *StoreHandler {
	return &StoreHandler{query: query, orders: orders, tracer: tracer}
}

func (h *StoreHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products/{productId}", h.getProduct)
	mux.HandleFunc("GET /api/products/category/{categoryId}", h.getByCategory)
	mux.HandleFunc("POST /api/orders", h.proxyOrder)
	mux.HandleFunc("GET /api/orders/{first}/{second}", h.proxyOrderQuery)
}

func (h *StoreHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := httpx.StartSpan(r, h.tracer, "store-service.GetProduct")
	defer span.End()

	id, err := httpx.PathInt64(r, "productId")
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	span.SetAttributes(attribute.Int64("product.id", id))
	product, err := h.query.GetProduct(ctx, id)
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, application.ToProductResponse(product))
}

func (h *StoreHandler) getByCategory(w http.ResponseWriter, r *http.Request) {
	ctx, span := httpx.StartSpan(r, h.tracer, "store-service.GetProductsByCategory")
	defer span.End()

	id, err := httpx.PathInt64(r, "categoryId")
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	products, err := h.query.GetProductsByCategory(ctx, id)
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, application.ToProductResponses(products))
}

func (h *StoreHandler) proxyOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		httpx.WriteError(r.Context(), w, apperr.Validation("read request body: %v", err))
		return
	}
	h.forward(w, r, "store-service.CreateOrder", body)
}

// proxyOrderQuery accepts the same path shapes the order service serves.
func (h *StoreHandler) proxyOrderQuery(w http.ResponseWriter, r *http.Request) {
	first, second := r.PathValue("first"), r.PathValue("second")
	if first != "user" && first != "store" && second != "items" {
		http.NotFound(w, r)
		return
	}
	h.forward(w, r, "store-service.GetOrders", nil)
}

func (h *StoreHandler) forward(w http.ResponseWriter, r *http.Request, spanName string, body []byte) {
	ctx, span := httpx.StartSpan(r, h.tracer, spanName)
	defer span.End()

	status, respBody, err := h.orders.Forward(ctx, r.Method, r.URL.Path, body)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("path", r.URL.Path).Msg("order service unreachable")
		httpx.WriteJSON(w, http.StatusBadGateway, httpx.ErrorResponse{Code: apperr.CodeInternal, Message: err.Error()})
		return
	}
	span.SetAttributes(attribute.Int("upstream.status_code", status))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(respBody)
}
