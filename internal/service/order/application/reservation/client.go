// Package reservation reserves and releases stock on the remote ledger,
// one item at a time, under a bounded retry policy.
package reservation

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/pkg/logger"
	"stockflow/internal/pkg/metrics"
	"stockflow/internal/service/order/domain"
	"stockflow/internal/service/order/domain/port"
)

// Policy bounds the retries of every remote call.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Client wraps an InventoryBackend with validation, retry and error classification.
type Client struct {
	backend port.InventoryBackend
	policy  Policy
	tracer  trace.Tracer
}

func NewClient(backend port.InventoryBackend, policy Policy, tracer trace.Tracer) *Client {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Client{backend: backend, policy: policy, tracer: tracer}
}

// Reserve validates then decreases stock for each item in order. It returns the
// items that were decreased before the first failure, so the caller knows
// exactly what to release.
func (c *Client) Reserve(ctx context.Context, items []domain.ItemRequest) ([]domain.ItemRequest, error) {
	ctx, span := c.tracer.Start(ctx, "reservation.Reserve")
	defer span.End()
	span.SetAttributes(attribute.Int("items.count", len(items)))

	reserved := make([]domain.ItemRequest, 0, len(items))
	for _, item := range items {
		if err := c.reserveItem(ctx, item); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "reservation failed")
			span.SetAttributes(attribute.Int("items.reserved", len(reserved)))
			return reserved, err
		}
		reserved = append(reserved, item)
	}
	span.SetAttributes(attribute.Int("items.reserved", len(reserved)))
	return reserved, nil
}

func (c *Client) reserveItem(ctx context.Context, item domain.ItemRequest) error {
	log := logger.Ctx(ctx).With().Int64("product_id", item.ProductID).Int("quantity", item.Quantity).Logger()

	var valid bool
	err := c.withRetry(ctx, "validate", item.ProductID, func(ctx context.Context) error {
		var err error
		valid, err = c.backend.ValidateStock(ctx, item.ProductID, item.Quantity)
		return err
	})
	if err != nil {
		log.Warn().Err(err).Msg("stock validation failed")
		return apperr.ReservationFailed(item.ProductID, item.Quantity, err)
	}
	if !valid {
		log.Warn().Msg("insufficient stock")
		return apperr.StockUnavailable(item.ProductID, item.Quantity)
	}

	err = c.withRetry(ctx, "decrease", item.ProductID, func(ctx context.Context) error {
		_, err := c.backend.Decrease(ctx, item.ProductID, item.Quantity)
		return err
	})
	if err != nil {
		log.Warn().Err(err).Msg("stock decrease failed")
		return apperr.ReservationFailed(item.ProductID, item.Quantity, err)
	}
	log.Info().Msg("stock reserved")
	return nil
}

// Release gives quantity units back. Failures are logged and reported as a nil product.
func (c *Client) Release(ctx context.Context, productID int64, quantity int) *port.Product {
	ctx, span := c.tracer.Start(ctx, "reservation.Release")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", productID), attribute.Int("quantity", quantity))

	var product *port.Product
	err := c.withRetry(ctx, "increase", productID, func(ctx context.Context) error {
		var err error
		product, err = c.backend.Increase(ctx, productID, quantity)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "release failed")
		logger.Ctx(ctx).Error().Err(err).Int64("product_id", productID).Int("quantity", quantity).Msg("failed to release stock")
		return nil
	}
	logger.Ctx(ctx).Info().Int64("product_id", productID).Int("quantity", quantity).Int("new_quantity", product.Quantity).Msg("stock released")
	return product
}

// withRetry runs fn up to MaxAttempts times, sleeping Delay between attempts,
// as long as the failure is retryable.
func (c *Client) withRetry(ctx context.Context, operation string, productID int64, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			metrics.ReservationAttempts.WithLabelValues(operation, "ok").Inc()
			return nil
		}
		if !IsRetryable(err) {
			metrics.ReservationAttempts.WithLabelValues(operation, "fatal").Inc()
			return err
		}
		metrics.ReservationAttempts.WithLabelValues(operation, "retryable").Inc()
		if attempt == c.policy.MaxAttempts {
			break
		}
		logger.Ctx(ctx).Warn().Err(err).
			Str("operation", operation).
			Int64("product_id", productID).
			Int("attempt", attempt).
			Msg("retrying inventory call")

		timer := time.NewTimer(c.policy.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Wrapf(ctx.Err(), "%s product %d after %d attempts", operation, productID, attempt)
		case <-timer.C:
		}
	}
	return errors.Wrapf(err, "%s product %d failed after %d attempts", operation, productID, c.policy.MaxAttempts)
}

// IsRetryable classifies a remote failure. Errors that know their own answer
// (HTTP status and transport errors) decide; cancellation and domain rejections
// never retry; anything else is assumed transient.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	switch {
	case err == nil:
		return false
	case errors.As(err, &r):
		return r.Retryable()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, apperr.ErrInsufficientStock),
		errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrValidationFailed):
		return false
	default:
		return true
	}
}
