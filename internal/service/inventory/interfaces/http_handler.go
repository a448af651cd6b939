// Package interfaces exposes the stock ledger over HTTP.
package interfaces

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stockflow/internal/pkg/httpx"
	"stockflow/internal/service/inventory/application"
	"stockflow/internal/service/inventory/domain"
)

// InventoryHandler serves /api/inventory.
type InventoryHandler struct {
	service *application.InventoryService
	tracer  trace.Tracer
}

func NewInventoryHandler(service *application.InventoryService, tracer trace.Tracer) *InventoryHandler {
	return &InventoryHandler{service: service, tracer: tracer}
}

func (h *InventoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/inventory", h.createProduct)
	mux.HandleFunc("POST /api/inventory/category", h.createCategory)
	mux.HandleFunc("POST /api/inventory/validate-stock", h.validateStock)
	mux.HandleFunc("PUT /api/inventory/{id}/increase", h.increase)
	mux.HandleFunc("PUT /api/inventory/{id}/decrease", h.decrease)
	mux.HandleFunc("PUT /api/inventory/{id}/adjust", h.adjust)
	mux.HandleFunc("GET /api/inventory/{id}", h.getProduct)
	mux.HandleFunc("GET /api/inventory/category/{id}", h.getByCategory)
}

func (h *InventoryHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := httpx.StartSpan(r, h.tracer, "inventory-service.CreateProduct")
	defer span.End()

	var req application.CreateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	product, err := h.service.CreateProduct(ctx, req)
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, application.ToProductResponse(product))
}

func (h *InventoryHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	ctx, span := httpx.StartSpan(r, h.tracer, "inventory-service.CreateCategory")
	defer span.End()

	var req application.CreateCategoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	category, err := h.service.CreateCategory(ctx, req)
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, application.ToCategoryResponse(category))
}

func (h *InventoryHandler) validateStock(w http.ResponseWriter, r *http.Request) {
	ctx, span := httpx.StartSpan(r, h.tracer, "inventory-service.ValidateStock")
	defer span.End()

	var req application.StockValidationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	valid := h.service.ValidateStock(ctx, req.ProductID, req.Quantity)
	httpx.WriteJSON(w, http.StatusOK, application.StockValidationResponse{IsValid: valid})
}

func (h *InventoryHandler) increase(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "inventory-service.IncreaseStock", h.service.IncreaseStock)
}

func (h *InventoryHandler) decrease(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "inventory-service.DecreaseStock", h.service.DecreaseStock)
}

func (h *InventoryHandler) adjust(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "inventory-service.AdjustStock", h.service.AdjustQuantity)
}

func (h *InventoryHandler) mutate(w http.ResponseWriter, r *http.Request, spanName string,
	op func(ctx context.Context, productID int64, amount int) (*domain.Product, error)) {
	ctx, span := httpx.StartSpan(r, h.tracer, spanName)
	defer span.End()

	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	amount, err := httpx.QueryInt(r, "amount")
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	span.SetAttributes(attribute.Int64("product.id", id), attribute.Int("amount", amount))

	product, err := op(ctx, id, amount)
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, application.ToProductResponse(product))
}

func (h *InventoryHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := httpx.StartSpan(r, h.tracer, "inventory-service.GetProduct")
	defer span.End()

	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	product, err := h.service.GetProduct(ctx, id)
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, application.ToProductResponse(product))
}

func (h *InventoryHandler) getByCategory(w http.ResponseWriter, r *http.Request) {
	ctx, span := httpx.StartSpan(r, h.tracer, "inventory-service.GetProductsByCategory")
	defer span.End()

	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	products, err := h.service.GetProductsByCategory(ctx, id)
	if err != nil {
		httpx.WriteError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, application.ToProductResponses(products))
}
