// Package cache stores short-lived analytics snapshots in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"smart_crm_backend/internal/events"
	"smart_crm_backend/platform/logger"
	"smart_crm_backend/platform/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "crm:analytics:"
	generationKey = keyPrefix + "generation"
)

// Snapshots is a keyed report cache. Invalidate drops every entry at once.
type Snapshots interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Invalidate(ctx context.Context) error
}

// Redis keeps snapshots under a generation counter. Invalidate bumps the
// counter so older keys are never read again and expire on their own.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to redisURL.
func NewRedis(redisURL string, ttl time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisWithClient(redis.NewClient(opt), ttl), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	fullKey, err := r.key(ctx, key)
	if err != nil {
		metrics.AnalyticsCacheLookups.WithLabelValues(metrics.ResultError).Inc()
		return false, err
	}
	raw, err := r.client.Get(ctx, fullKey).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.AnalyticsCacheLookups.WithLabelValues(metrics.ResultMiss).Inc()
		return false, nil
	}
	if err != nil {
		metrics.AnalyticsCacheLookups.WithLabelValues(metrics.ResultError).Inc()
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		metrics.AnalyticsCacheLookups.WithLabelValues(metrics.ResultError).Inc()
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	metrics.AnalyticsCacheLookups.WithLabelValues(metrics.ResultHit).Inc()
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value interface{}) error {
	fullKey, err := r.key(ctx, key)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, fullKey, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context) error {
	if err := r.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) key(ctx context.Context, key string) (string, error) {
	gen, err := r.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("cache generation: %w", err)
	}
	return fmt.Sprintf("%s%d:%s", keyPrefix, gen, key), nil
}

// Subscribe invalidates snapshots whenever a report input changes.
func Subscribe(bus events.Bus, snapshots Snapshots, log *logger.Logger) {
	handler := events.HandlerFunc(func(ctx context.Context, _ events.Event) error {
		if err := snapshots.Invalidate(ctx); err != nil {
			log.WithContext(ctx).Warn("analytics cache invalidation failed", "error", err)
			return err
		}
		return nil
	})
	for _, name := range events.ReportInputEvents {
		bus.Subscribe(name, handler)
	}
}
