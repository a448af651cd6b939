// Package infrastructure implements the storefront replica's repositories.
package infrastructure

import (
	"context"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/service/store/domain"
)

const mysqlDuplicateEntry = 1062

func Models() []any {
	return []any{&ProductModel{}, &CategoryModel{}}
}

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var m ProductModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ReplicaNotFound("product %d not found", id)
		}
		return nil, errors.Wrapf(err, "find replica product %d", id)
	}
	return toDomainProduct(&m), nil
}

func (r *GormProductRepository) FindByCategoryID(ctx context.Context, categoryID int64) ([]*domain.Product, error) {
	var models []ProductModel
	if err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).Order("id").Find(&models).Error; err != nil {
		return nil, errors.Wrapf(err, "find replica products of category %d", categoryID)
	}
	products := make([]*domain.Product, 0, len(models))
	for i := range models {
		products = append(products, toDomainProduct(&models[i]))
	}
	return products, nil
}

// Upsert locks the row (or the gap where it would be) and writes fn's result
// with INSERT ... ON DUPLICATE KEY UPDATE inside one transaction.
func (r *GormProductRepository) Upsert(ctx context.Context, id int64, fn domain.ApplyFunc) (*domain.Product, bool, error) {
	var (
		result  *domain.Product
		written bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing *domain.Product
		var m ProductModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error
		switch {
		case err == nil:
			existing = toDomainProduct(&m)
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return errors.Wrapf(err, "lock replica product %d", id)
		}

		next, write := fn(existing)
		result, written = next, write
		if !write {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(fromDomainProduct(next)).Error; err != nil {
			return errors.Wrapf(err, "upsert replica product %d", id)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, written, nil
}

type GormCategoryRepository struct {
	db *gorm.DB
}

func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// Save inserts first and falls back to renaming on a duplicate key.
func (r *GormCategoryRepository) Save(ctx context.Context, c *domain.Category) error {
	db := r.db.WithContext(ctx)
	err := db.Create(&CategoryModel{ID: c.ID, Name: c.Name}).Error
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) || myErr.Number != mysqlDuplicateEntry {
		return errors.Wrapf(err, "insert replica category %d", c.ID)
	}
	if err := db.Model(&CategoryModel{}).Where("id = ?", c.ID).Update("name", c.Name).Error; err != nil {
		return errors.Wrapf(err, "rename replica category %d", c.ID)
	}
	return nil
}

func (r *GormCategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	var m CategoryModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ReplicaNotFound("category %d not found", id)
		}
		return nil, errors.Wrapf(err, "find replica category %d", id)
	}
	return &domain.Category{ID: m.ID, Name: m.Name}, nil
}
