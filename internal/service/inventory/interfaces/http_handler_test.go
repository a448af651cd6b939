package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"stockflow/internal/pkg/httpx"
	"stockflow/internal/pkg/keylock"
	"stockflow/internal/service/inventory/application"
	"stockflow/internal/service/inventory/domain"
	"stockflow/internal/service/inventory/infrastructure"
)

type discardPublisher struct{}

func (discardPublisher) PublishInventoryEvent(context.Context, string, *domain.InventoryEvent) error {
	return nil
}

func (discardPublisher) PublishCategoryEvent(context.Context, string, *domain.CategoryEvent) error {
	return nil
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	products := infrastructure.NewMemoryProductRepository()
	categories := infrastructure.NewMemoryCategoryRepository()
	require.NoError(t, categories.Create(context.Background(), &domain.Category{ID: 1, Name: "Electronics"}))
	require.NoError(t, products.Create(context.Background(), &domain.Product{ID: 1, Name: "Laptop", CategoryID: 1, Quantity: 10, Version: 1}))

	tracer := noop.NewTracerProvider().Tracer("test")
	svc := application.NewInventoryService(products, categories, discardPublisher{}, keylock.New(),
		application.Topics{NewInventory: "new-inventory", InventoryUpdated: "inventory-updated", NewCategory: "new-category"}, tracer)

	mux := http.NewServeMux()
	NewInventoryHandler(svc, tracer).RegisterRoutes(mux)
	return mux
}

func serve(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestDecreaseEndpoint(t *testing.T) {
	mux := newTestMux(t)

	rec := serve(mux, http.MethodPut, "/api/inventory/1/decrease?amount=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var product application.ProductResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))
	assert.Equal(t, 7, product.Quantity)
	assert.Equal(t, int64(2), product.Version)

	rec = serve(mux, http.MethodPut, "/api/inventory/1/decrease?amount=30", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var apiErr httpx.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, "INV-0001", apiErr.Code)
}

func TestAdjustEndpointAcceptsSignedAmount(t *testing.T) {
	mux := newTestMux(t)

	rec := serve(mux, http.MethodPut, "/api/inventory/1/adjust?amount=-4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var product application.ProductResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))
	assert.Equal(t, 6, product.Quantity)

	rec = serve(mux, http.MethodPut, "/api/inventory/1/adjust?amount=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMutationParameterErrors(t *testing.T) {
	mux := newTestMux(t)

	assert.Equal(t, http.StatusBadRequest, serve(mux, http.MethodPut, "/api/inventory/1/increase", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(mux, http.MethodPut, "/api/inventory/abc/increase?amount=1", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(mux, http.MethodPut, "/api/inventory/99/increase?amount=1", "").Code)
}

func TestValidateStockEndpoint(t *testing.T) {
	mux := newTestMux(t)

	rec := serve(mux, http.MethodPost, "/api/inventory/validate-stock", `{"productId":1,"quantity":10}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isValid":true}`, rec.Body.String())

	rec = serve(mux, http.MethodPost, "/api/inventory/validate-stock", `{"productId":2,"quantity":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isValid":false}`, rec.Body.String())
}

func TestCreateAndQueryEndpoints(t *testing.T) {
	mux := newTestMux(t)

	rec := serve(mux, http.MethodPost, "/api/inventory/category", `{"name":"Books"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var category application.CategoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &category))

	rec = serve(mux, http.MethodPost, "/api/inventory",
		`{"name":"Go in Action","price":39.5,"categoryId":`+jsonInt(category.ID)+`,"quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(mux, http.MethodGet, "/api/inventory/category/"+jsonInt(category.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var products []application.ProductResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Go in Action", products[0].Name)

	assert.Equal(t, http.StatusNotFound, serve(mux, http.MethodGet, "/api/inventory/42", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(mux, http.MethodPost, "/api/inventory", `{"name":""}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(mux, http.MethodPost, "/api/inventory", `not json`).Code)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
