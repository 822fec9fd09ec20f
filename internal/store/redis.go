package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "resumeanalyzer:cache:"

// RedisCache implements model.CacheStore on a Redis hash per key, holding the
// value and its storage time. Entries carry no TTL; freshness is decided by
// the caller from the stored time.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache connects to redisURL and verifies the connection.
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{rdb: rdb}, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// Get returns the cached value for key and the time it was stored.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, time.Time, bool, error) {
	vals, err := c.rdb.HMGet(ctx, redisKeyPrefix+key, "value", "stored_at").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, time.Time{}, false, nil
		}
		return nil, time.Time{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	value, ok1 := vals[0].(string)
	stamp, ok2 := vals[1].(string)
	if !ok1 || !ok2 {
		return nil, time.Time{}, false, nil
	}
	nanos, err := strconv.ParseInt(stamp, 10, 64)
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("redis get %s: bad stored_at %q: %w", key, stamp, err)
	}
	return []byte(value), time.Unix(0, nanos).UTC(), true, nil
}

// Set overwrites the cached value for key.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, storedAt time.Time) error {
	err := c.rdb.HSet(ctx, redisKeyPrefix+key,
		"value", value,
		"stored_at", strconv.FormatInt(storedAt.UnixNano(), 10),
	).Err()
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
