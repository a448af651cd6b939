package port

import "context"

// OrderGateway relays storefront order calls to the order service and hands
// back the upstream status and body unchanged.
type OrderGateway interface {
	Forward(ctx context.Context, method, path string, body []byte) (status int, respBody []byte, err error)
}
