// Package application implements the stock ledger use cases.
package application

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/pkg/logger"
	"stockflow/internal/pkg/metrics"
	"stockflow/internal/service/inventory/domain"
	"stockflow/internal/service/inventory/domain/port"
)

// Topics names the topics the ledger publishes to.
type Topics struct {
	NewInventory     string
	InventoryUpdated string
	NewCategory      string
}

// InventoryService is the stock ledger. It owns Product.Quantity.
type InventoryService struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	publisher  port.EventPublisher
	locker     port.Locker
	topics     Topics
	tracer     trace.Tracer
}

func NewInventoryService(
	products domain.ProductRepository,
	categories domain.CategoryRepository,
	publisher port.EventPublisher,
	locker port.Locker,
	topics Topics,
	tracer trace.Tracer,
) *InventoryService {
	return &InventoryService{
		products:   products,
		categories: categories,
		publisher:  publisher,
		locker:     locker,
		topics:     topics,
		tracer:     tracer,
	}
}

// AdjustQuantity adds delta to the product's stock and publishes the matching
// event after the change is committed. Positive deltas go to the new-inventory
// topic as STOCK_INCREASE, negative ones to inventory-updated as STOCK_DECREASE.
func (s *InventoryService) AdjustQuantity(ctx context.Context, productID int64, delta int) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.AdjustQuantity")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", productID), attribute.Int("delta", delta))

	if delta == 0 {
		return nil, apperr.Validation("amount must not be zero")
	}
	direction, eventType, topic := "increase", domain.EventStockIncrease, s.topics.NewInventory
	if delta < 0 {
		direction, eventType, topic = "decrease", domain.EventStockDecrease, s.topics.InventoryUpdated
	}

	product, err := s.mutate(ctx, productID, delta)
	if err != nil {
		metrics.LedgerMutations.WithLabelValues(direction, "rejected").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "stock mutation rejected")
		logger.Ctx(ctx).Warn().Err(err).Int64("product_id", productID).Int("delta", delta).Msg("stock mutation rejected")
		return nil, err
	}
	metrics.LedgerMutations.WithLabelValues(direction, "committed").Inc()
	logger.Ctx(ctx).Info().
		Int64("product_id", productID).
		Int("delta", delta).
		Int("new_quantity", product.Quantity).
		Int64("version", product.Version).
		Msg("stock updated")

	s.publishInventoryEvent(ctx, topic, domain.NewInventoryEvent(eventType, product, s.categoryName(ctx, product.CategoryID)))
	return product, nil
}

// IncreaseStock adds amount (> 0) units.
func (s *InventoryService) IncreaseStock(ctx context.Context, productID int64, amount int) (*domain.Product, error) {
	if amount <= 0 {
		return nil, apperr.Validation("amount must be positive, got %d", amount)
	}
	return s.AdjustQuantity(ctx, productID, amount)
}

// DecreaseStock removes amount (> 0) units.
func (s *InventoryService) DecreaseStock(ctx context.Context, productID int64, amount int) (*domain.Product, error) {
	if amount <= 0 {
		return nil, apperr.Validation("amount must be positive, got %d", amount)
	}
	return s.AdjustQuantity(ctx, productID, -amount)
}

func (s *InventoryService) mutate(ctx context.Context, productID int64, delta int) (*domain.Product, error) {
	unlock, err := s.locker.Lock(ctx, "product-"+strconv.FormatInt(productID, 10))
	if err != nil {
		return nil, errors.Wrapf(err, "lock product %d", productID)
	}
	defer unlock()

	return s.products.Update(ctx, productID, func(p *domain.Product) error {
		return p.AdjustQuantity(delta)
	})
}

// ValidateStock reports whether requested units are available. It never
// fails: any lookup error is logged and answered with false.
func (s *InventoryService) ValidateStock(ctx context.Context, productID int64, requested int) bool {
	ctx, span := s.tracer.Start(ctx, "inventory.ValidateStock")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", productID), attribute.Int("requested", requested))

	if requested <= 0 {
		logger.Ctx(ctx).Warn().Int64("product_id", productID).Int("requested", requested).Msg("stock validation with non-positive quantity")
		return false
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		span.RecordError(err)
		logger.Ctx(ctx).Warn().Err(err).Int64("product_id", productID).Msg("stock validation failed closed")
		return false
	}
	valid := product.HasStock(requested)
	span.SetAttributes(attribute.Bool("stock.valid", valid))
	return valid
}

// CreateProduct inserts a product and announces it with a CREATED event.
func (s *InventoryService) CreateProduct(ctx context.Context, req CreateProductRequest) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.CreateProduct")
	defer span.End()

	product, err := domain.NewProduct(req.Name, req.Price, req.CategoryID, req.Quantity, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, product); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create product failed")
		return nil, err
	}
	logger.Ctx(ctx).Info().Int64("product_id", product.ID).Str("name", product.Name).Msg("product created")

	s.publishInventoryEvent(ctx, s.topics.NewInventory, domain.NewInventoryEvent(domain.EventCreated, product, s.categoryName(ctx, product.CategoryID)))
	return product, nil
}

// CreateCategory inserts a category and publishes it on the new-category topic.
func (s *InventoryService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*domain.Category, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.CreateCategory")
	defer span.End()

	category, err := domain.NewCategory(req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, category); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create category failed")
		return nil, err
	}
	logger.Ctx(ctx).Info().Int64("category_id", category.ID).Str("name", category.Name).Msg("category created")

	if err := s.publisher.PublishCategoryEvent(ctx, s.topics.NewCategory, domain.NewCategoryEvent(category)); err != nil {
		s.reportPublishFailure(ctx, s.topics.NewCategory, err)
	}
	return category, nil
}

func (s *InventoryService) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	return s.products.FindByID(ctx, productID)
}

func (s *InventoryService) GetProductsByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error) {
	return s.products.FindByCategoryID(ctx, categoryID)
}

func (s *InventoryService) categoryName(ctx context.Context, categoryID int64) string {
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		logger.Ctx(ctx).Debug().Err(err).Int64("category_id", categoryID).Msg("category lookup failed, event carries no category name")
		return ""
	}
	return category.Name
}

// publishInventoryEvent runs after commit; failures never undo the mutation.
func (s *InventoryService) publishInventoryEvent(ctx context.Context, topic string, event *domain.InventoryEvent) {
	if err := s.publisher.PublishInventoryEvent(ctx, topic, event); err != nil {
		s.reportPublishFailure(ctx, topic, err)
	}
}

func (s *InventoryService) reportPublishFailure(ctx context.Context, topic string, cause error) {
	err := apperr.PublishFailed(topic, cause)
	metrics.PublishFailures.WithLabelValues(topic).Inc()
	trace.SpanFromContext(ctx).RecordError(err)
	logger.Ctx(ctx).Error().Err(err).Str("code", err.Code).Str("topic", topic).Msg("event publish failed after commit")
}
