package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/odyssey-catalog/internal/observability"
)

const (
	cacheVersionKey = "products:version"
	cacheName       = "products"

	cacheFillTimeout = 30 * time.Second
)

// CachedRepository serves reads from redis and invalidates by bumping a
// version key on every write. Concurrent misses on the same key share one
// load.
type CachedRepository struct {
	next    Repository
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
	group   singleflight.Group
}

var _ Repository = (*CachedRepository)(nil)

// NewCachedRepository wraps next. A nil client returns next unchanged.
func NewCachedRepository(next Repository, client *redis.Client, ttl time.Duration, logger *slog.Logger, metrics *observability.Metrics) Repository {
	if client == nil {
		return next
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedRepository{next: next, client: client, ttl: ttl, logger: logger, metrics: metrics}
}

func (c *CachedRepository) List(ctx context.Context) ([]Product, error) {
	var out []Product
	err := c.fetch(ctx, "list", &out, func(ctx context.Context) (any, error) {
		return c.next.List(ctx)
	})
	return out, err
}

func (c *CachedRepository) Get(ctx context.Context, id string) (Product, error) {
	var out Product
	err := c.fetch(ctx, "item:"+id, &out, func(ctx context.Context) (any, error) {
		return c.next.Get(ctx, id)
	})
	return out, err
}

func (c *CachedRepository) Create(ctx context.Context, product Product) (Product, error) {
	created, err := c.next.Create(ctx, product)
	if err != nil {
		return Product{}, err
	}
	c.bump(ctx)
	return created, nil
}

func (c *CachedRepository) Update(ctx context.Context, product Product) error {
	if err := c.next.Update(ctx, product); err != nil {
		return err
	}
	c.bump(ctx)
	return nil
}

func (c *CachedRepository) Delete(ctx context.Context, id string) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.bump(ctx)
	return nil
}

// Version returns the current cache version, initialising when missing.
func (c *CachedRepository) Version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, cacheVersionKey).Int64()
	}
	return ver, err
}

func (c *CachedRepository) bump(ctx context.Context) {
	if err := c.client.Incr(ctx, cacheVersionKey).Err(); err != nil {
		c.logger.Warn("products cache bump", slog.Any("error", err))
	}
}

// fetch reads key from redis or populates it through load. Redis failures
// fall back to load so the cache never takes the read path down.
func (c *CachedRepository) fetch(ctx context.Context, suffix string, dest any, load func(context.Context) (any, error)) error {
	ver, err := c.Version(ctx)
	if err != nil {
		c.logger.Warn("products cache version", slog.Any("error", err))
		return c.loadInto(ctx, dest, load)
	}
	key := fmt.Sprintf("products:%s:%d", suffix, ver)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		c.metrics.ObserveCache(cacheName, true)
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.Warn("products cache get", slog.Any("error", err))
		return c.loadInto(ctx, dest, load)
	}
	c.metrics.ObserveCache(cacheName, false)

	resultChan := c.group.DoChan(key, func() (any, error) {
		// Other waiters share this fill; the starting caller's cancellation
		// must not reach it.
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheFillTimeout)
		defer cancel()
		value, err := load(fillCtx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(fillCtx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("products cache set", slog.Any("error", err))
		}
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dest)
	}
}

func (c *CachedRepository) loadInto(ctx context.Context, dest any, load func(context.Context) (any, error)) error {
	value, err := load(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
