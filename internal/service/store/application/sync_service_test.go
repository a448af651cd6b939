package application_test

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/service/store/application"
	"stockflow/internal/service/store/domain"
	"stockflow/internal/service/store/infrastructure"
)

type recordingNotifier struct {
	mu      sync.Mutex
	changes []domain.StockChange
}

func (n *recordingNotifier) NotifyStockChanged(_ context.Context, change domain.StockChange) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
}

type replica struct {
	sync       *application.SyncService
	query      *application.QueryService
	products   *infrastructure.MemoryProductRepository
	categories *infrastructure.MemoryCategoryRepository
	notifier   *recordingNotifier
}

func newReplica() *replica {
	products := infrastructure.NewMemoryProductRepository()
	categories := infrastructure.NewMemoryCategoryRepository()
	notifier := &recordingNotifier{}
	tracer := noop.NewTracerProvider().Tracer("test")
	return &replica{
		sync:       application.NewSyncService(products, categories, notifier, tracer),
		query:      application.NewQueryService(products),
		products:   products,
		categories: categories,
		notifier:   notifier,
	}
}

func created(id int64, qty int, version int64) *domain.InventoryEvent {
	return &domain.InventoryEvent{
		EventID: "e-created", EventType: domain.EventCreated, ProductID: id, ProductName: "Laptop",
		CategoryID: 1, CategoryName: "Electronics", Price: 999.99, NewQuantity: qty, Version: version,
	}
}

func decreased(id int64, qty int, version int64) *domain.InventoryEvent {
	return &domain.InventoryEvent{EventType: domain.EventStockDecrease, ProductID: id, NewQuantity: qty, Version: version}
}

func TestApplyInventoryEventIsIdempotent(t *testing.T) {
	r := newReplica()
	ctx := context.Background()

	applied, err := r.sync.ApplyInventoryEvent(ctx, "new-inventory", created(1, 10, 1))
	require.NoError(t, err)
	assert.True(t, applied)

	event := decreased(1, 7, 2)
	applied, err = r.sync.ApplyInventoryEvent(ctx, "inventory-updated", event)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = r.sync.ApplyInventoryEvent(ctx, "inventory-updated", event)
	require.NoError(t, err)
	assert.False(t, applied)

	p, err := r.query.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Quantity)
	assert.Equal(t, int64(2), p.Version)
	assert.Equal(t, "Laptop", p.Name)
	assert.Len(t, r.notifier.changes, 2)
}

func TestApplyInventoryEventSkipsOutOfOrderVersions(t *testing.T) {
	r := newReplica()
	ctx := context.Background()

	_, err := r.sync.ApplyInventoryEvent(ctx, "new-inventory", created(1, 10, 1))
	require.NoError(t, err)
	_, err = r.sync.ApplyInventoryEvent(ctx, "inventory-updated", decreased(1, 6, 3))
	require.NoError(t, err)

	// version 2 arrives late from the other topic
	applied, err := r.sync.ApplyInventoryEvent(ctx, "new-inventory", &domain.InventoryEvent{
		EventType: domain.EventStockIncrease, ProductID: 1, NewQuantity: 8, Version: 2,
	})
	require.NoError(t, err)
	assert.False(t, applied)

	p, err := r.query.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, p.Quantity)
	assert.Equal(t, int64(3), p.Version)
}

func TestUnversionedEventsCanRegress(t *testing.T) {
	r := newReplica()
	ctx := context.Background()

	_, err := r.sync.ApplyInventoryEvent(ctx, "new-inventory", created(1, 10, 0))
	require.NoError(t, err)
	_, err = r.sync.ApplyInventoryEvent(ctx, "inventory-updated", decreased(1, 4, 0))
	require.NoError(t, err)
	_, err = r.sync.ApplyInventoryEvent(ctx, "inventory-updated", decreased(1, 7, 0))
	require.NoError(t, err)

	p, err := r.query.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Quantity)
}

func TestApplyInventoryEventRejectsInvalidEvents(t *testing.T) {
	r := newReplica()

	_, err := r.sync.ApplyInventoryEvent(context.Background(), "new-inventory", &domain.InventoryEvent{EventType: domain.EventCreated})
	assert.True(t, errors.Is(err, apperr.ErrValidationFailed))

	_, err = r.sync.ApplyInventoryEvent(context.Background(), "new-inventory", decreased(1, -1, 1))
	assert.True(t, errors.Is(err, apperr.ErrValidationFailed))
	assert.Empty(t, r.notifier.changes)
}

func TestApplyCategoryEventOverwritesName(t *testing.T) {
	r := newReplica()
	ctx := context.Background()

	require.NoError(t, r.sync.ApplyCategoryEvent(ctx, "new-category", &domain.CategoryEvent{CategoryID: 3, CategoryName: "Books"}))
	require.NoError(t, r.sync.ApplyCategoryEvent(ctx, "new-category", &domain.CategoryEvent{CategoryID: 3, CategoryName: "Novels"}))

	c, err := r.categories.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Novels", c.Name)

	err = r.sync.ApplyCategoryEvent(ctx, "new-category", &domain.CategoryEvent{CategoryName: "orphan"})
	assert.True(t, errors.Is(err, apperr.ErrValidationFailed))
}

func TestQueryByCategory(t *testing.T) {
	r := newReplica()
	ctx := context.Background()

	_, err := r.sync.ApplyInventoryEvent(ctx, "new-inventory", created(2, 1, 1))
	require.NoError(t, err)
	_, err = r.sync.ApplyInventoryEvent(ctx, "new-inventory", created(1, 5, 1))
	require.NoError(t, err)

	products, err := r.query.GetProductsByCategory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int64(1), products[0].ID)

	_, err = r.query.GetProductsByCategory(ctx, 9)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = r.query.GetProduct(ctx, 9)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
