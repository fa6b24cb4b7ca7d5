// Package service fronts a text provider with the prompt response cache.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"recipe-bot/internal/core/ai"
	"recipe-bot/internal/core/ai/cache"
	"recipe-bot/internal/core/ai/provider"
	"recipe-bot/internal/metrics"
	"recipe-bot/internal/pkg/common"
)

// Service AI 服務
type Service struct {
	provider provider.Provider
	cache    cache.Cache
	timeout  time.Duration
}

// NewService 創建 AI 服務，c 可為 nil
func NewService(p provider.Provider, c cache.Cache, timeout time.Duration) *Service {
	return &Service{provider: p, cache: c, timeout: timeout}
}

// ProcessRequest 先查快取，未命中時呼叫提供者並回寫快取
func (s *Service) ProcessRequest(ctx context.Context, prompt string) (*ai.Response, error) {
	key := cacheKey(prompt)

	if s.cache != nil {
		if val, err := s.cache.Get(ctx, key); err == nil && val != "" {
			return &ai.Response{Content: val, Model: s.provider.GetModel(), CacheHit: true}, nil
		} else if err != nil && !errors.Is(err, common.ErrCacheMiss) && !errors.Is(err, common.ErrCacheDisabled) {
			common.LogWarn("Cache lookup failed", zap.Error(err))
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.provider.Generate(ctx, &provider.Request{Prompt: prompt, Temperature: 0.7})
	elapsed := time.Since(start)
	common.LogAICall(s.provider.Name(), elapsed, err)
	metrics.ObserveAIRequest(s.provider.Name(), elapsed, err)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp.Content); err != nil {
			common.LogWarn("Cache store failed", zap.Error(err))
		}
	}

	return &ai.Response{Content: resp.Content, Model: resp.Model, Usage: resp.Usage}, nil
}

// Provider 目前使用的提供者
func (s *Service) Provider() provider.Provider { return s.provider }

// cacheKey 統一空白，確保同樣內容的 prompt 得到同一個 key
func cacheKey(prompt string) string {
	return strings.Join(strings.Fields(prompt), " ")
}
