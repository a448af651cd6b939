// Package adapter implements the storefront's outbound ports.
package adapter

import (
	"context"

	"stockflow/internal/pkg/httpclient"
	"stockflow/internal/service/store/domain/port"
)

type OrderHTTPGateway struct {
	client *httpclient.Client
}

var _ port.OrderGateway = (*OrderHTTPGateway)(nil)

func NewOrderHTTPGateway(client *httpclient.Client) *OrderHTTPGateway {
	return &OrderHTTPGateway{client: client}
}

func (g *OrderHTTPGateway) Forward(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	req := httpclient.Request{Method: method, Path: path}
	if len(body) > 0 {
		req.Body = body
	}
	return g.client.Forward(ctx, req)
}
