// Package cache stores analytic results in Redis as JSON.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sales-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const KeyPrefix = "sales:analytics:"

// Cache is the read-through store for analytic results.
type Cache interface {
	Get(ctx context.Context, metric models.AnalyticsMetric, dst interface{}) (bool, error)
	Set(ctx context.Context, metric models.AnalyticsMetric, value interface{}) error
	InvalidateAll(ctx context.Context) error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Key returns the Redis key of an analytics metric.
func Key(metric models.AnalyticsMetric) string {
	return KeyPrefix + string(metric)
}

// Get decodes the cached value into dst. It reports false on a miss.
func (c *RedisCache) Get(ctx context.Context, metric models.AnalyticsMetric, dst interface{}) (bool, error) {
	val, err := c.client.Get(ctx, Key(metric)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", metric, err)
	}
	if err := json.Unmarshal(val, dst); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", metric, err)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, metric models.AnalyticsMetric, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", metric, err)
	}
	if err := c.client.Set(ctx, Key(metric), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", metric, err)
	}
	return nil
}

// InvalidateAll drops every cached analytic result.
func (c *RedisCache) InvalidateAll(ctx context.Context) error {
	if err := c.client.Del(ctx, AllKeys()...).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// AllKeys lists the keys of every analytics metric.
func AllKeys() []string {
	return []string{
		Key(models.AnalyticsTotal),
		Key(models.AnalyticsByRegion),
		Key(models.AnalyticsDailyChanges),
		Key(models.AnalyticsMaxPerDay),
	}
}
