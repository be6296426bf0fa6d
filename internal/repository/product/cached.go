package product

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

const (
	cacheKeyList   = "catalog:products:list"
	cacheKeySlug   = "catalog:products:slug:"
	cacheKeyID     = "catalog:products:id:"
	cacheKeyPrefix = "catalog:products:*"
)

// cachedRepo is a read-through Redis decorator for product reads. Cache
// failures are logged and fall back to the wrapped repository.
type cachedRepo struct {
	Repository
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// cachedProduct carries the fields Product hides from its public JSON.
type cachedProduct struct {
	domain.Product
	PairsWellWith []string  `json:"pairsWellWith,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func NewCached(repo Repository, client redis.Cmdable, ttl time.Duration, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cachedRepo{Repository: repo, client: client, ttl: ttl, logger: logger.Named("product_cache")}
}

func (r *cachedRepo) List(ctx context.Context) ([]domain.Product, error) {
	var cached []cachedProduct
	if r.get(ctx, cacheKeyList, &cached) {
		return fromCached(cached), nil
	}
	list, err := r.Repository.List(ctx)
	if err != nil {
		return nil, err
	}
	r.set(ctx, cacheKeyList, toCached(list))
	return list, nil
}

func (r *cachedRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.getOne(ctx, cacheKeySlug+slug, func() (*domain.Product, error) {
		return r.Repository.GetBySlug(ctx, slug)
	})
}

func (r *cachedRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.getOne(ctx, cacheKeyID+id, func() (*domain.Product, error) {
		return r.Repository.GetByID(ctx, id)
	})
}

// Upsert writes through and drops every cached product read.
func (r *cachedRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	res, err := r.Repository.Upsert(ctx, p)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return res, nil
}

func (r *cachedRepo) getOne(ctx context.Context, key string, load func() (*domain.Product, error)) (*domain.Product, error) {
	var cached cachedProduct
	if r.get(ctx, key, &cached) {
		p := cached.product()
		return &p, nil
	}
	p, err := load()
	if err != nil {
		return nil, err
	}
	r.set(ctx, key, toCachedOne(*p))
	return p, nil
}

func (r *cachedRepo) get(ctx context.Context, key string, dest any) bool {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		r.logger.Warn("cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (r *cachedRepo) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		r.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		r.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *cachedRepo) invalidate(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, cacheKeyPrefix, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn("cache scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("cache invalidate failed", zap.Int("keys", len(keys)), zap.Error(err))
	}
}

func (c cachedProduct) product() domain.Product {
	p := c.Product
	p.PairsWellWith = c.PairsWellWith
	p.CreatedAt = c.CreatedAt
	return p
}

func toCachedOne(p domain.Product) cachedProduct {
	return cachedProduct{Product: p, PairsWellWith: p.PairsWellWith, CreatedAt: p.CreatedAt}
}

func toCached(list []domain.Product) []cachedProduct {
	out := make([]cachedProduct, len(list))
	for i, p := range list {
		out[i] = toCachedOne(p)
	}
	return out
}

func fromCached(list []cachedProduct) []domain.Product {
	out := make([]domain.Product, len(list))
	for i, c := range list {
		out[i] = c.product()
	}
	return out
}
