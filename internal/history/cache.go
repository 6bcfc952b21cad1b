package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nihalshetty-boop/listri/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache holds recently served history pages keyed by query.
type Cache interface {
	Get(ctx context.Context, key string) ([]domain.ChatMessage, error)
	Set(ctx context.Context, key string, msgs []domain.ChatMessage, ttl time.Duration) error
}

// RedisCache stores JSON-encoded result sets under a common prefix.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) key(k string) string {
	return fmt.Sprintf("%s:%s", c.prefix, k)
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]domain.ChatMessage, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var msgs []domain.ChatMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached messages: %w", err)
	}
	return msgs, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, msgs []domain.ChatMessage, ttl time.Duration) error {
	data, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}
	if err := c.client.Set(ctx, c.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}
