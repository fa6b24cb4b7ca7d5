package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"recipe-bot/internal/pkg/common"
)

// RedisCache 以 Redis 保存回應內容，多個實例可共用
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache 創建 Redis 緩存
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get 獲取緩存
func (s *RedisCache) Get(ctx context.Context, prompt string) (string, error) {
	val, err := s.client.Get(ctx, s.key(prompt)).Result()
	if errors.Is(err, redis.Nil) {
		common.LogCacheMiss("recipe")
		return "", common.ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	common.LogCacheHit("recipe")
	return val, nil
}

// Set 設置緩存
func (s *RedisCache) Set(ctx context.Context, prompt, value string) error {
	if err := s.client.Set(ctx, s.key(prompt), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

func (s *RedisCache) key(prompt string) string {
	return "recipe:response:" + generateKey(prompt)
}
