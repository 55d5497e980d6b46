package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gemkart/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// TrackingCache caches the public order-tracking view. The tracking
// endpoint is unauthenticated and read-heavy; entries are invalidated on
// every status change.
type TrackingCache interface {
	// Get retrieves cached tracking info, or nil on miss.
	Get(ctx context.Context, orderNumber string) (*model.TrackingInfo, error)

	// Set stores tracking info.
	Set(ctx context.Context, info *model.TrackingInfo) error

	// Invalidate drops the entry for an order number.
	Invalidate(ctx context.Context, orderNumber string) error

	// Close releases the underlying client.
	Close() error
}

// redisTrackingCache implements TrackingCache on Redis.
type redisTrackingCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisTrackingCache creates a Redis-backed tracking cache and
// verifies connectivity.
func NewRedisTrackingCache(ctx context.Context, addr, password string, db int, ttl time.Duration, logger zerolog.Logger) (TrackingCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &redisTrackingCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "tracking-cache").Logger(),
	}, nil
}

func trackingKey(orderNumber string) string {
	return "tracking:" + orderNumber
}

// Get retrieves cached tracking info, or nil on miss.
func (c *redisTrackingCache) Get(ctx context.Context, orderNumber string) (*model.TrackingInfo, error) {
	data, err := c.client.Get(ctx, trackingKey(orderNumber)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		c.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to read tracking cache")
		return nil, fmt.Errorf("failed to read tracking cache: %w", err)
	}

	var info model.TrackingInfo
	if err := json.Unmarshal(data, &info); err != nil {
		// Corrupt entry; treat as a miss so the caller refreshes it.
		c.logger.Warn().Err(err).Str("order_number", orderNumber).Msg("dropping corrupt tracking cache entry")
		_ = c.client.Del(ctx, trackingKey(orderNumber)).Err()
		return nil, nil
	}

	return &info, nil
}

// Set stores tracking info.
func (c *redisTrackingCache) Set(ctx context.Context, info *model.TrackingInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal tracking info: %w", err)
	}

	if err := c.client.Set(ctx, trackingKey(info.OrderNumber), data, c.ttl).Err(); err != nil {
		c.logger.Error().Err(err).Str("order_number", info.OrderNumber).Msg("failed to write tracking cache")
		return fmt.Errorf("failed to write tracking cache: %w", err)
	}

	return nil
}

// Invalidate drops the entry for an order number.
func (c *redisTrackingCache) Invalidate(ctx context.Context, orderNumber string) error {
	if err := c.client.Del(ctx, trackingKey(orderNumber)).Err(); err != nil {
		c.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to invalidate tracking cache")
		return fmt.Errorf("failed to invalidate tracking cache: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *redisTrackingCache) Close() error {
	return c.client.Close()
}

// nopTrackingCache always misses; used when Redis is disabled.
type nopTrackingCache struct{}

// NewNopTrackingCache returns a TrackingCache that never stores anything.
func NewNopTrackingCache() TrackingCache {
	return nopTrackingCache{}
}

func (nopTrackingCache) Get(ctx context.Context, orderNumber string) (*model.TrackingInfo, error) {
	return nil, nil
}
func (nopTrackingCache) Set(ctx context.Context, info *model.TrackingInfo) error       { return nil }
func (nopTrackingCache) Invalidate(ctx context.Context, orderNumber string) error      { return nil }
func (nopTrackingCache) Close() error                                                  { return nil }
