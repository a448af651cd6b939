package application_test

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/pkg/keylock"
	"stockflow/internal/service/inventory/application"
	"stockflow/internal/service/inventory/domain"
	"stockflow/internal/service/inventory/infrastructure"
)

type published struct {
	topic string
	event *domain.InventoryEvent
}

type recordingPublisher struct {
	mu         sync.Mutex
	events     []published
	categories []*domain.CategoryEvent
	err        error
}

func (p *recordingPublisher) PublishInventoryEvent(_ context.Context, topic string, event *domain.InventoryEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic: topic, event: event})
	return p.err
}

func (p *recordingPublisher) PublishCategoryEvent(_ context.Context, _ string, event *domain.CategoryEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.categories = append(p.categories, event)
	return p.err
}

var topics = application.Topics{
	NewInventory:     "new-inventory",
	InventoryUpdated: "inventory-updated",
	NewCategory:      "new-category",
}

func newLedger(t *testing.T, publisher *recordingPublisher) (*application.InventoryService, *infrastructure.MemoryProductRepository) {
	t.Helper()
	products := infrastructure.NewMemoryProductRepository()
	categories := infrastructure.NewMemoryCategoryRepository()
	require.NoError(t, categories.Create(context.Background(), &domain.Category{ID: 1, Name: "Electronics"}))
	require.NoError(t, products.Create(context.Background(), &domain.Product{
		ID: 1, Name: "Laptop", Price: 999.99, CategoryID: 1, Quantity: 10, Version: 1,
	}))
	svc := application.NewInventoryService(products, categories, publisher, keylock.New(), topics, noop.NewTracerProvider().Tracer("test"))
	return svc, products
}

func TestDecreaseStockPublishesInventoryUpdated(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newLedger(t, pub)

	product, err := svc.DecreaseStock(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 8, product.Quantity)
	assert.Equal(t, int64(2), product.Version)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "inventory-updated", pub.events[0].topic)
	assert.Equal(t, domain.EventStockDecrease, pub.events[0].event.EventType)
	assert.Equal(t, 8, pub.events[0].event.NewQuantity)
	assert.Equal(t, "Electronics", pub.events[0].event.CategoryName)
	assert.Equal(t, int64(2), pub.events[0].event.Version)
}

func TestIncreaseStockPublishesNewInventory(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newLedger(t, pub)

	product, err := svc.IncreaseStock(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 15, product.Quantity)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "new-inventory", pub.events[0].topic)
	assert.Equal(t, domain.EventStockIncrease, pub.events[0].event.EventType)
	assert.Equal(t, 15, pub.events[0].event.NewQuantity)
}

func TestAdjustQuantityRejections(t *testing.T) {
	pub := &recordingPublisher{}
	svc, products := newLedger(t, pub)
	ctx := context.Background()

	_, err := svc.AdjustQuantity(ctx, 1, 0)
	assert.True(t, errors.Is(err, apperr.ErrValidationFailed))

	_, err = svc.DecreaseStock(ctx, 1, 11)
	assert.True(t, errors.Is(err, apperr.ErrInsufficientStock))

	_, err = svc.IncreaseStock(ctx, 1, -1)
	assert.True(t, errors.Is(err, apperr.ErrValidationFailed))

	_, err = svc.DecreaseStock(ctx, 404, 1)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	stored, err := products.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Quantity)
	assert.Equal(t, int64(1), stored.Version)
	assert.Empty(t, pub.events)
}

func TestPublishFailureKeepsMutation(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc, products := newLedger(t, pub)

	product, err := svc.DecreaseStock(context.Background(), 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, product.Quantity)

	stored, err := products.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 6, stored.Quantity)
}

func TestValidateStock(t *testing.T) {
	svc, _ := newLedger(t, &recordingPublisher{})
	ctx := context.Background()

	assert.True(t, svc.ValidateStock(ctx, 1, 10))
	assert.False(t, svc.ValidateStock(ctx, 1, 11))
	assert.False(t, svc.ValidateStock(ctx, 1, 0))
	assert.False(t, svc.ValidateStock(ctx, 1, -3))
	assert.False(t, svc.ValidateStock(ctx, 999, 1))
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func (m *mockProductRepository) FindByCategoryID(ctx context.Context, categoryID int64) ([]*domain.Product, error) {
	args := m.Called(ctx, categoryID)
	ps, _ := args.Get(0).([]*domain.Product)
	return ps, args.Error(1)
}

func (m *mockProductRepository) Update(ctx context.Context, id int64, fn func(*domain.Product) error) (*domain.Product, error) {
	args := m.Called(ctx, id, fn)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func TestValidateStockFailsClosedOnStorageError(t *testing.T) {
	repo := &mockProductRepository{}
	repo.On("FindByID", mock.Anything, int64(7)).Return(nil, errors.New("connection refused"))

	svc := application.NewInventoryService(repo, infrastructure.NewMemoryCategoryRepository(),
		&recordingPublisher{}, keylock.New(), topics, noop.NewTracerProvider().Tracer("test"))

	assert.False(t, svc.ValidateStock(context.Background(), 7, 1))
	repo.AssertExpectations(t)
}

func TestCreateProductAndCategoryEmitEvents(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newLedger(t, pub)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, application.CreateCategoryRequest{Name: "Books"})
	require.NoError(t, err)
	require.Len(t, pub.categories, 1)
	assert.Equal(t, category.ID, pub.categories[0].CategoryID)
	assert.Equal(t, "Books", pub.categories[0].CategoryName)

	product, err := svc.CreateProduct(ctx, application.CreateProductRequest{
		Name: "Go in Action", Price: 39.5, CategoryID: category.ID, Quantity: 3,
	})
	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "new-inventory", pub.events[0].topic)
	assert.Equal(t, domain.EventCreated, pub.events[0].event.EventType)
	assert.Equal(t, product.ID, pub.events[0].event.ProductID)
	assert.Equal(t, "Books", pub.events[0].event.CategoryName)
	assert.Equal(t, 3, pub.events[0].event.NewQuantity)

	_, err = svc.CreateCategory(ctx, application.CreateCategoryRequest{Name: "  "})
	assert.True(t, errors.Is(err, apperr.ErrValidationFailed))
}

func TestConcurrentDecreasesNeverOversell(t *testing.T) {
	pub := &recordingPublisher{}
	svc, products := newLedger(t, pub)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.DecreaseStock(ctx, 1, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	stored, err := products.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Quantity)
	assert.Equal(t, int64(11), stored.Version)
	assert.Len(t, pub.events, 10)
}

func TestAdjustQuantityStopsAtZero(t *testing.T) {
	pub := &recordingPublisher{}
	svc, products := newLedger(t, pub)
	ctx := context.Background()
	require.NoError(t, products.Create(ctx, &domain.Product{ID: 2, Name: "Mouse", CategoryID: 1, Quantity: 5, Version: 1}))

	product, err := svc.AdjustQuantity(ctx, 2, -3)
	require.NoError(t, err)
	assert.Equal(t, 2, product.Quantity)
	require.Len(t, pub.events, 1)
	assert.Equal(t, domain.EventStockDecrease, pub.events[0].event.EventType)

	_, err = svc.AdjustQuantity(ctx, 2, -5)
	assert.True(t, errors.Is(err, apperr.ErrInsufficientStock))
	stored, err := products.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Quantity)
	assert.Len(t, pub.events, 1)
}
