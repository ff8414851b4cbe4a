package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisEventCache keeps short-lived markers for webhook events that were
// already applied, so duplicate provider deliveries are dropped before they
// reach the database. The store's ledger remains the source of truth.
type RedisEventCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates a new Redis client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisEventCache(client *redis.Client, ttl time.Duration) *RedisEventCache {
	return &RedisEventCache{
		client: client,
		ttl:    ttl,
	}
}

func eventKey(bookingID, eventID string) string {
	return fmt.Sprintf("payment_event:%s:%s", bookingID, eventID)
}

func (r *RedisEventCache) SeenEvent(ctx context.Context, bookingID, eventID string) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	n, err := r.client.Exists(ctx, eventKey(bookingID, eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check event marker: %w", err)
	}
	return n > 0, nil
}

func (r *RedisEventCache) MarkEvent(ctx context.Context, bookingID, eventID string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Set(ctx, eventKey(bookingID, eventID), 1, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set event marker: %w", err)
	}
	return nil
}

func (r *RedisEventCache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	redisKey := fmt.Sprintf("rate_limit:%s", key)
	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, redisKey, window)
	}

	return count <= int64(limit), nil
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
