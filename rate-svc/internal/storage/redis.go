package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisCache holds short-lived submission markers so a double-clicked
// submit does not store the same review twice.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: client, TTL: ttl}
}

func (c *RedisCache) ReviewMarkerKey(menuItemID uuid.UUID, userID string) string {
	return "review:" + menuItemID.String() + ":" + userID
}

// Claim sets the marker and reports whether it was free.
func (c *RedisCache) Claim(ctx context.Context, key string) (bool, error) {
	return c.Client.SetNX(ctx, key, "1", c.TTL).Result()
}

func (c *RedisCache) Release(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}
