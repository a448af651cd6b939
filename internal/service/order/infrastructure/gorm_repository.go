// Package infrastructure implements the order repositories.
package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/service/order/domain"
)

// Models lists the tables this package needs migrated.
func Models() []any {
	return []any{&OrderModel{}, &OrderItemModel{}}
}

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	m := fromDomainOrder(o)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return errors.Wrap(err, "insert order")
	}
	o.ID = m.ID
	return nil
}

func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	res := r.db.WithContext(ctx).Model(&OrderModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update status of order %d", id)
	}
	if res.RowsAffected == 0 {
		return apperr.OrderNotFound("order %d not found", id)
	}
	return nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	var m OrderModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.OrderNotFound("order %d not found", id)
		}
		return nil, errors.Wrapf(err, "find order %d", id)
	}
	return toDomainOrder(&m), nil
}

func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID int64) ([]*domain.Order, error) {
	var models []OrderModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&models).Error; err != nil {
		return nil, errors.Wrapf(err, "find orders of user %d", userID)
	}
	return toDomainOrders(models), nil
}

func (r *GormOrderRepository) FindByStoreID(ctx context.Context, storeID int64) ([]*domain.Order, error) {
	var models []OrderModel
	if err := r.db.WithContext(ctx).Where("store_id = ?", storeID).Order("id").Find(&models).Error; err != nil {
		return nil, errors.Wrapf(err, "find orders of store %d", storeID)
	}
	return toDomainOrders(models), nil
}

type GormItemRepository struct {
	db *gorm.DB
}

func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// SaveAll inserts every item in one transaction.
func (r *GormItemRepository) SaveAll(ctx context.Context, items []*domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	models := make([]*OrderItemModel, 0, len(items))
	for _, it := range items {
		models = append(models, &OrderItemModel{OrderID: it.OrderID, ProductID: it.ProductID, Quantity: it.Quantity})
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&models).Error
	})
	if err != nil {
		return errors.Wrapf(err, "insert %d order items", len(items))
	}
	for i, m := range models {
		items[i].ID = m.ID
	}
	return nil
}

func (r *GormItemRepository) FindByOrderID(ctx context.Context, orderID int64) ([]*domain.OrderItem, error) {
	var models []OrderItemModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&models).Error; err != nil {
		return nil, errors.Wrapf(err, "find items of order %d", orderID)
	}
	out := make([]*domain.OrderItem, 0, len(models))
	for i := range models {
		out = append(out, toDomainItem(&models[i]))
	}
	return out, nil
}
