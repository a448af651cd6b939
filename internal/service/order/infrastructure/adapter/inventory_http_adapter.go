package adapter

import (
	"context"
	"net/http"
	"strconv"

	"stockflow/internal/pkg/httpclient"
	"stockflow/internal/service/order/domain/port"
)

const (
	validateStockPath = "/api/inventory/validate-stock"
	productPathPrefix = "/api/inventory/"
)

type validateStockRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type validateStockResponse struct {
	IsValid bool `json:"isValid"`
}

// InventoryHTTPAdapter implements port.InventoryBackend against inventory-service.
type InventoryHTTPAdapter struct {
	client *httpclient.Client
}

func NewInventoryHTTPAdapter(client *httpclient.Client) *InventoryHTTPAdapter {
	return &InventoryHTTPAdapter{client: client}
}

func (a *InventoryHTTPAdapter) ValidateStock(ctx context.Context, productID int64, quantity int) (bool, error) {
	var resp validateStockResponse
	err := a.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   validateStockPath,
		Body:   validateStockRequest{ProductID: productID, Quantity: quantity},
	}, &resp)
	if err != nil {
		return false, err
	}
	return resp.IsValid, nil
}

func (a *InventoryHTTPAdapter) Increase(ctx context.Context, productID int64, amount int) (*port.Product, error) {
	return a.mutate(ctx, productID, "increase", amount)
}

func (a *InventoryHTTPAdapter) Decrease(ctx context.Context, productID int64, amount int) (*port.Product, error) {
	return a.mutate(ctx, productID, "decrease", amount)
}

func (a *InventoryHTTPAdapter) mutate(ctx context.Context, productID int64, direction string, amount int) (*port.Product, error) {
	var product port.Product
	err := a.client.Do(ctx, httpclient.Request{
		Method: http.MethodPut,
		Path:   productPathPrefix + strconv.FormatInt(productID, 10) + "/" + direction,
		Query:  map[string]string{"amount": strconv.Itoa(amount)},
	}, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}
