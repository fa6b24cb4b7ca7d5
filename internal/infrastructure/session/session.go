// Package session keeps short-lived per-sender conversation state in Redis.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"recipe-bot/internal/core/message"
	"recipe-bot/internal/pkg/common"
)

// Store 以 Redis 保存每位使用者最後一份食譜 ID
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New 建立 session store，client 為 nil 時所有操作皆為空操作
func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Connect 建立 Redis 連線並測試
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func lastRecipeKey(platform message.Platform, sender string) string {
	return fmt.Sprintf("session:%s:%s:last_recipe", platform, sender)
}

// SetLastRecipeID 記錄使用者最後一份食譜
func (s *Store) SetLastRecipeID(ctx context.Context, platform message.Platform, sender, recipeID string) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Set(ctx, lastRecipeKey(platform, sender), recipeID, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

// LastRecipeID 取得使用者最後一份食譜，沒有紀錄時回傳空字串
func (s *Store) LastRecipeID(ctx context.Context, platform message.Platform, sender string) (string, error) {
	if s.client == nil {
		return "", nil
	}
	id, err := s.client.Get(ctx, lastRecipeKey(platform, sender)).Result()
	if errors.Is(err, redis.Nil) {
		common.LogDebug("No session for sender", zap.String("platform", string(platform)))
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}
	return id, nil
}

// Ping 檢查 Redis 連線
func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Ping(ctx).Err()
}
