package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/stream-summaries/internal/config"
	"github.com/andresuchdata/stream-summaries/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	catalogKeyPrefix = "catalog:index"
	scanBatchSize    = 100
)

// CatalogCache holds published catalogs per locale.
type CatalogCache interface {
	GetCatalog(ctx context.Context, locale string) (*domain.Catalog, bool, error)
	SetCatalog(ctx context.Context, locale string, catalog *domain.Catalog) error
	Invalidate(ctx context.Context, locale string) error
	InvalidateAll(ctx context.Context) error
	Close() error
}

type redisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopCatalogCache struct{}

// NewCatalogCache connects to redis when caching is enabled and falls back
// to a cache that never hits otherwise.
func NewCatalogCache(cfg config.CacheConfig) (CatalogCache, error) {
	if !cfg.Enabled {
		return &noopCatalogCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisCatalogCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopCatalogCache() CatalogCache {
	return &noopCatalogCache{}
}

func (c *redisCatalogCache) GetCatalog(ctx context.Context, locale string) (*domain.Catalog, bool, error) {
	payload, err := c.client.Get(ctx, catalogKey(locale)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	catalog, err := domain.DecodeCatalog(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode catalog cache: %w", err)
	}

	return catalog, true, nil
}

func (c *redisCatalogCache) SetCatalog(ctx context.Context, locale string, catalog *domain.Catalog) error {
	payload, err := domain.MarshalCatalog(catalog)
	if err != nil {
		return fmt.Errorf("encode catalog cache: %w", err)
	}

	if err := c.client.Set(ctx, catalogKey(locale), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisCatalogCache) Invalidate(ctx context.Context, locale string) error {
	if err := c.client.Del(ctx, catalogKey(locale)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *redisCatalogCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, catalogKeyPrefix, scanBatchSize)
}

func (c *redisCatalogCache) Close() error {
	return c.client.Close()
}

func (n *noopCatalogCache) GetCatalog(ctx context.Context, locale string) (*domain.Catalog, bool, error) {
	return nil, false, nil
}

func (n *noopCatalogCache) SetCatalog(ctx context.Context, locale string, catalog *domain.Catalog) error {
	return nil
}

func (n *noopCatalogCache) Invalidate(ctx context.Context, locale string) error {
	return nil
}

func (n *noopCatalogCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func (n *noopCatalogCache) Close() error {
	return nil
}

func catalogKey(locale string) string {
	return fmt.Sprintf("%s:%s", catalogKeyPrefix, locale)
}
