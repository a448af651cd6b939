// Package cache puts a redis read-through cache in front of the replica.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"stockflow/internal/pkg/logger"
	"stockflow/internal/service/store/domain"
)

const keyPrefix = "store:product:"

// CachedProductRepository caches FindByID and evicts on every write. Redis
// failures degrade to the underlying repository.
type CachedProductRepository struct {
	inner domain.ProductRepository
	rdb   redis.UniversalClient
	ttl   time.Duration
	group singleflight.Group
}

func NewCachedProductRepository(inner domain.ProductRepository, rdb redis.UniversalClient, ttl time.Duration) *CachedProductRepository {
	return &CachedProductRepository{inner: inner, rdb: rdb, ttl: ttl}
}

func productKey(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

func (r *CachedProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	key := productKey(id)
	raw, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p domain.Product
		if jsonErr := json.Unmarshal(raw, &p); jsonErr == nil {
			return &p, nil
		}
		logger.Ctx(ctx).Warn().Str("key", key).Msg("discarding undecodable cache entry")
	case errors.Is(err, redis.Nil):
	default:
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("redis get failed, reading replica")
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		p, err := r.inner.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(p); err == nil {
			if err := r.rdb.Set(ctx, key, raw, r.ttl).Err(); err != nil {
				logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("redis set failed")
			}
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	p := *v.(*domain.Product)
	return &p, nil
}

func (r *CachedProductRepository) FindByCategoryID(ctx context.Context, categoryID int64) ([]*domain.Product, error) {
	return r.inner.FindByCategoryID(ctx, categoryID)
}

// Upsert writes through and evicts the cached row when it changed.
func (r *CachedProductRepository) Upsert(ctx context.Context, id int64, fn domain.ApplyFunc) (*domain.Product, bool, error) {
	p, written, err := r.inner.Upsert(ctx, id, fn)
	if err != nil || !written {
		return p, written, err
	}
	if err := r.rdb.Del(ctx, productKey(id)).Err(); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Int64("product_id", id).Msg("redis evict failed, entry expires with its ttl")
	}
	return p, written, nil
}
