// Package memory holds process-local adapters backed by go-cache. They serve
// single-instance deployments and tests where Redis and PostgreSQL are absent.
package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-dashboard/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Cache is an in-process response cache. Values are stored encoded so callers
// never share memory with cached entries, matching the Redis cache.
type Cache struct {
	cache  *cache.Cache
	logger *zap.Logger
}

// NewCache creates a new in-memory cache
func NewCache(defaultTTL, cleanupInterval time.Duration, logger *zap.Logger) *Cache {
	logger.Info("Initialized go-cache response cache",
		zap.Duration("default_ttl", defaultTTL),
		zap.Duration("cleanup_interval", cleanupInterval),
	)

	return &Cache{
		cache:  cache.New(defaultTTL, cleanupInterval),
		logger: logger.Named("memory_cache"),
	}
}

// Get retrieves a value from cache
func (c *Cache) Get(_ context.Context, key string, dest interface{}) error {
	x, found := c.cache.Get(key)
	if !found {
		return domain.ErrCacheMiss
	}

	data, ok := x.([]byte)
	if !ok {
		c.logger.Warn("Memory cache data type mismatch",
			zap.String("key", key),
			zap.String("type", fmt.Sprintf("%T", x)),
		)
		return domain.ErrCacheMiss
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached value: %w", err)
	}
	return nil
}

// SetWithTTL stores a value in cache with custom TTL
func (c *Cache) SetWithTTL(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	c.cache.Set(key, data, ttl)
	return nil
}

// DeletePrefix removes all keys starting with prefix
func (c *Cache) DeletePrefix(_ context.Context, prefix string) error {
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}
	return nil
}

// HealthCheck always succeeds
func (c *Cache) HealthCheck(_ context.Context) error {
	return nil
}
