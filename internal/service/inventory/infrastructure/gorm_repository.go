// Package infrastructure implements the ledger's repositories.
package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/service/inventory/domain"
)

// Models lists the tables this package needs migrated.
func Models() []any {
	return []any{&ProductModel{}, &CategoryModel{}}
}

// GormProductRepository is the MySQL ProductRepository.
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Create(ctx context.Context, p *domain.Product) error {
	m := fromDomainProduct(p)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return errors.Wrap(err, "insert product")
	}
	p.ID = m.ID
	return nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var m ProductModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ProductNotFound(id)
		}
		return nil, errors.Wrapf(err, "find product %d", id)
	}
	return toDomainProduct(&m), nil
}

func (r *GormProductRepository) FindByCategoryID(ctx context.Context, categoryID int64) ([]*domain.Product, error) {
	var models []ProductModel
	if err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).Order("id").Find(&models).Error; err != nil {
		return nil, errors.Wrapf(err, "find products of category %d", categoryID)
	}
	products := make([]*domain.Product, 0, len(models))
	for i := range models {
		products = append(products, toDomainProduct(&models[i]))
	}
	return products, nil
}

// Update locks the row with SELECT ... FOR UPDATE, applies fn and writes the
// new quantity and version in the same transaction.
func (r *GormProductRepository) Update(ctx context.Context, id int64, fn func(p *domain.Product) error) (*domain.Product, error) {
	var updated *domain.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m ProductModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ProductNotFound(id)
			}
			return errors.Wrapf(err, "lock product %d", id)
		}

		p := toDomainProduct(&m)
		if err := fn(p); err != nil {
			return err
		}

		res := tx.Model(&ProductModel{}).Where("id = ?", id).Updates(map[string]interface{}{
			"quantity":   p.Quantity,
			"version":    p.Version,
			"updated_at": p.UpdatedAt,
		})
		if res.Error != nil {
			return errors.Wrapf(res.Error, "update product %d", id)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GormCategoryRepository is the MySQL CategoryRepository.
type GormCategoryRepository struct {
	db *gorm.DB
}

func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	m := &CategoryModel{Name: c.Name}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return errors.Wrap(err, "insert category")
	}
	c.ID = m.ID
	return nil
}

func (r *GormCategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	var m CategoryModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.CategoryNotFound(id)
		}
		return nil, errors.Wrapf(err, "find category %d", id)
	}
	return toDomainCategory(&m), nil
}
