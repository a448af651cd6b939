package reservation

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/pkg/httpclient"
	"stockflow/internal/service/order/domain"
	"stockflow/internal/service/order/domain/port"
	"stockflow/internal/service/order/infrastructure/adapter"
)

var unavailable = &httpclient.StatusError{Method: http.MethodPut, URL: "/api/inventory/100/decrease", StatusCode: http.StatusServiceUnavailable}

func newClient(backend port.InventoryBackend, attempts int) *Client {
	return NewClient(backend, Policy{MaxAttempts: attempts, Delay: time.Millisecond}, noop.NewTracerProvider().Tracer("test"))
}

func TestReserveDecreasesEveryItem(t *testing.T) {
	backend := adapter.NewInventoryMemoryAdapter(port.Product{ID: 100, Quantity: 10}, port.Product{ID: 200, Quantity: 5})

	reserved, err := newClient(backend, 3).Reserve(context.Background(), []domain.ItemRequest{
		{ProductID: 100, Quantity: 3},
		{ProductID: 200, Quantity: 5},
	})

	require.NoError(t, err)
	assert.Len(t, reserved, 2)
	assert.Equal(t, 7, backend.Quantity(100))
	assert.Equal(t, 0, backend.Quantity(200))
}

func TestReserveStopsAtInsufficientStock(t *testing.T) {
	backend := adapter.NewInventoryMemoryAdapter(port.Product{ID: 100, Quantity: 10}, port.Product{ID: 200, Quantity: 1})

	reserved, err := newClient(backend, 3).Reserve(context.Background(), []domain.ItemRequest{
		{ProductID: 100, Quantity: 3},
		{ProductID: 200, Quantity: 2},
		{ProductID: 100, Quantity: 1},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInsufficientStock))
	assert.Equal(t, []domain.ItemRequest{{ProductID: 100, Quantity: 3}}, reserved)
	assert.Equal(t, 0, backend.Calls(adapter.OpDecrease, 200))
	assert.Equal(t, 1, backend.Calls(adapter.OpValidate, 200))
	assert.Equal(t, 1, backend.Quantity(200))
}

func TestRetryableFailureUsesEveryAttempt(t *testing.T) {
	backend := adapter.NewInventoryMemoryAdapter(port.Product{ID: 100, Quantity: 10})
	backend.Fail(adapter.OpDecrease, 100, unavailable, -1)

	reserved, err := newClient(backend, 3).Reserve(context.Background(), []domain.ItemRequest{{ProductID: 100, Quantity: 3}})

	assert.Empty(t, reserved)
	assert.True(t, errors.Is(err, apperr.ErrReservationFailed))
	assert.Equal(t, apperr.CodeReservationFailed, apperr.Code(err))
	assert.Contains(t, err.Error(), "product 100")
	assert.Equal(t, 3, backend.Calls(adapter.OpDecrease, 100))
	assert.Equal(t, 10, backend.Quantity(100))
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	backend := adapter.NewInventoryMemoryAdapter(port.Product{ID: 100, Quantity: 10})
	backend.Fail(adapter.OpValidate, 100, &httpclient.TransportError{Method: http.MethodPost, URL: "/x", Err: errors.New("connection reset")}, 2)

	reserved, err := newClient(backend, 3).Reserve(context.Background(), []domain.ItemRequest{{ProductID: 100, Quantity: 3}})

	require.NoError(t, err)
	assert.Len(t, reserved, 1)
	assert.Equal(t, 3, backend.Calls(adapter.OpValidate, 100))
	assert.Equal(t, 7, backend.Quantity(100))
}

func TestNonRetryableFailureIsAttemptedOnce(t *testing.T) {
	backend := adapter.NewInventoryMemoryAdapter(port.Product{ID: 100, Quantity: 10})
	backend.Fail(adapter.OpDecrease, 100, &httpclient.StatusError{Method: http.MethodPut, URL: "/x", StatusCode: http.StatusBadRequest}, -1)

	_, err := newClient(backend, 5).Reserve(context.Background(), []domain.ItemRequest{{ProductID: 100, Quantity: 3}})

	assert.True(t, errors.Is(err, apperr.ErrReservationFailed))
	assert.Equal(t, 1, backend.Calls(adapter.OpDecrease, 100))
}

func TestRetryHonoursDelay(t *testing.T) {
	backend := adapter.NewInventoryMemoryAdapter(port.Product{ID: 100, Quantity: 10})
	backend.Fail(adapter.OpIncrease, 100, unavailable, -1)
	c := NewClient(backend, Policy{MaxAttempts: 3, Delay: 20 * time.Millisecond}, noop.NewTracerProvider().Tracer("test"))

	start := time.Now()
	assert.Nil(t, c.Release(context.Background(), 100, 1))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	assert.Equal(t, 3, backend.Calls(adapter.OpIncrease, 100))
}

func TestRetryStopsWhenContextIsDone(t *testing.T) {
	backend := adapter.NewInventoryMemoryAdapter(port.Product{ID: 100, Quantity: 10})
	backend.Fail(adapter.OpValidate, 100, unavailable, -1)
	c := NewClient(backend, Policy{MaxAttempts: 10, Delay: time.Hour}, noop.NewTracerProvider().Tracer("test"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Reserve(ctx, []domain.ItemRequest{{ProductID: 100, Quantity: 1}})

	assert.True(t, errors.Is(err, apperr.ErrReservationFailed))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, 1, backend.Calls(adapter.OpValidate, 100))
}

func TestReleaseReturnsProduct(t *testing.T) {
	backend := adapter.NewInventoryMemoryAdapter(port.Product{ID: 100, Quantity: 7, Version: 2})

	product := newClient(backend, 3).Release(context.Background(), 100, 3)

	require.NotNil(t, product)
	assert.Equal(t, 10, product.Quantity)
	assert.Equal(t, int64(3), product.Version)
	assert.Nil(t, newClient(backend, 3).Release(context.Background(), 999, 1))
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"server error", &httpclient.StatusError{StatusCode: 502}, true},
		{"client error", &httpclient.StatusError{StatusCode: 404}, false},
		{"transport", &httpclient.TransportError{Err: errors.New("refused")}, true},
		{"decode", &httpclient.DecodeError{Err: errors.New("bad json")}, false},
		{"wrapped server error", errors.Wrap(&httpclient.StatusError{StatusCode: 500}, "decrease"), true},
		{"cancelled", context.Canceled, false},
		{"deadline", errors.Wrap(context.DeadlineExceeded, "call"), false},
		{"insufficient stock", apperr.InsufficientStock(1, 0, 1), false},
		{"not found", apperr.ProductNotFound(1), false},
		{"validation", apperr.Validation("bad"), false},
		{"unknown", errors.New("boom"), true},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsRetryable(tc.err))
		})
	}
}
