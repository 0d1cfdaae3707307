// Package cache is a small read-through cache for aggregated query results.
// With REDIS_ENABLED=true it is backed by Redis so replicas share warm
// entries; otherwise it degrades to an in-process map with the same TTL
// semantics. Failures on the Redis path are logged and treated as misses.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pkgpulse/pkgpulse/pkg/utils"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type entry struct {
	value   []byte
	expires time.Time
}

type Cache struct {
	rdb    *redis.Client
	local  *xsync.Map[string, entry]
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a cache using environment variables for configuration.
// Environment variables:
//   - REDIS_ENABLED: use Redis instead of the in-process map (default: "false")
//   - REDIS_HOST: Redis host (default: "localhost")
//   - REDIS_PORT: Redis port (default: "6379")
//   - REDIS_PASSWORD: Redis password (default: "")
//   - REDIS_DB: Redis database number (default: "0")
//   - CACHE_TTL: entry lifetime in seconds (default: 60)
func New(ctx context.Context, logger *zap.Logger) (*Cache, error) {
	ttl := time.Duration(utils.EnvInt("CACHE_TTL", 60)) * time.Second

	c := &Cache{
		ttl:    ttl,
		logger: logger,
	}

	if !utils.EnvBool("REDIS_ENABLED", false) {
		c.local = xsync.NewMap[string, entry]()
		logger.Info("Result cache using in-process store", zap.Duration("ttl", ttl))
		return c, nil
	}

	addr := fmt.Sprintf("%s:%s", utils.Env("REDIS_HOST", "localhost"), utils.Env("REDIS_PORT", "6379"))

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: utils.Env("REDIS_PASSWORD", ""),
		DB:       utils.EnvInt("REDIS_DB", 0),

		PoolSize:     10,
		MinIdleConns: 2,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	c.rdb = rdb
	logger.Info("Result cache using Redis", zap.String("addr", addr), zap.Duration("ttl", ttl))
	return c, nil
}

// Get returns the cached bytes for key, or ok=false on a miss or expiry.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.rdb != nil {
		val, err := c.rdb.Get(ctx, key).Bytes()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				c.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
			}
			return nil, false
		}
		return val, true
	}

	e, ok := c.local.Load(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expires) {
		c.local.Delete(key)
		return nil, false
	}
	return e.value, true
}

// Set stores val under key for the configured TTL. Best effort.
func (c *Cache) Set(ctx context.Context, key string, val []byte) {
	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, val, c.ttl).Err(); err != nil {
			c.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		}
		return
	}

	c.local.Store(key, entry{value: val, expires: time.Now().Add(c.ttl)})
}

// Close releases the Redis connection when one is in use.
func (c *Cache) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}
