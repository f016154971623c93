package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"er-dashboard/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "dashboard:v1:"

// Cache stores JSON encoded results in Redis. A Cache without a reachable
// server is disabled: reads miss and writes are dropped.
type Cache struct {
	client  *redis.Client
	enabled bool
	ttl     time.Duration
	logger  zerolog.Logger
}

func New(cfg *config.Config, logger zerolog.Logger) *Cache {
	if cfg.RedisURL == "" {
		logger.Info().Msg("redis not configured, result cache disabled")
		return &Cache{ttl: cfg.CacheTTL, logger: logger}
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to parse REDIS_URL, result cache disabled")
		return &Cache{ttl: cfg.CacheTTL, logger: logger}
	}

	opt.PoolSize = 5
	opt.MinIdleConns = 1
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), opt.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, result cache disabled")
		client.Close()
		return &Cache{ttl: cfg.CacheTTL, logger: logger}
	}

	logger.Info().Dur("ttl", cfg.CacheTTL).Msg("redis connected")
	return NewWithClient(client, cfg.CacheTTL, logger)
}

func NewWithClient(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Cache {
	return &Cache{
		client:  client,
		enabled: client != nil,
		ttl:     ttl,
		logger:  logger,
	}
}

func (c *Cache) Enabled() bool {
	return c.enabled
}

// GetJSON decodes the cached value into dst and reports whether it was found.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if !c.enabled {
		return false, nil
	}

	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("dropping undecodable cache entry")
		c.client.Del(ctx, keyPrefix+key)
		return false, nil
	}
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Invalidate removes every entry whose key starts with prefix.
func (c *Cache) Invalidate(ctx context.Context, prefix string) (int, error) {
	if !c.enabled {
		return 0, nil
	}

	removed := 0
	iter := c.client.Scan(ctx, 0, keyPrefix+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("cache scan: %w", err)
	}
	return removed, nil
}

func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
