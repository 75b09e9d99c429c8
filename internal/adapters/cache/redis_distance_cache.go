package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"logistics-scheduler-service/internal/platform/obs"
	"logistics-scheduler-service/internal/ports"
)

const redisKeyPrefix = "directions:"

// RedisDistanceCache shares directions between server and job processes.
type RedisDistanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDistanceCache(client *redis.Client, ttl time.Duration) *RedisDistanceCache {
	return &RedisDistanceCache{client: client, ttl: ttl}
}

func (c *RedisDistanceCache) Get(ctx context.Context, key string) (_ ports.DistanceResult, _ bool, err error) {
	defer obs.Time(ctx, "distance.cache.redis.Get")(&err)

	b, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.DistanceResult{}, false, nil
	}
	if err != nil {
		return ports.DistanceResult{}, false, fmt.Errorf("redis get %q: %w", key, err)
	}

	r, err := decodeResult(b)
	if err != nil {
		return ports.DistanceResult{}, false, err
	}
	return r, true, nil
}

func (c *RedisDistanceCache) Put(ctx context.Context, key string, r ports.DistanceResult) error {
	b, err := encodeResult(r)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}
