// Package gemini generates recipe text with Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"recipe-bot/internal/core/ai"
	"recipe-bot/internal/core/ai/provider"
	"recipe-bot/internal/infrastructure/config"
	"recipe-bot/internal/pkg/common"
)

// Options 客戶端選項
type Options struct {
	BaseURL    string
	MaxRetries int
	RetryDelay time.Duration
}

// Client Gemini 提供者
type Client struct {
	genai      *genai.Client
	model      string
	content    *genai.GenerateContentConfig
	maxRetries int
	retryDelay time.Duration
}

var _ provider.Provider = (*Client)(nil)

// NewClient 建立 Gemini 客戶端
func NewClient(ctx context.Context, cfg config.GeminiConfig, opts Options) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, common.ErrConfiguration.Wrap(errors.New("gemini API key is required"))
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	gi, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := float32(0.7)
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}

	common.LogInfo("Gemini client initialized", zap.String("model", cfg.Model))
	return &Client{
		genai:      gi,
		model:      cfg.Model,
		content:    &genai.GenerateContentConfig{Temperature: &temperature},
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
	}, nil
}

// Generate 依 prompt 產生文字
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}

	cfg := *c.content
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := c.generateWithRetries(ctx, contents, &cfg)
	if err != nil {
		return nil, common.ErrBackendFailure.Wrap(err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		return nil, common.ErrBackendFailure.Wrap(fmt.Errorf("prompt blocked: %v", resp.PromptFeedback.BlockReason))
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, common.ErrEmptyUpstream
	}

	out := &provider.Response{Content: text, Model: c.model}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = ai.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out, nil
}

func (c *Client) generateWithRetries(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, cfg)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// genai 以值回傳 APIError
		var apiErr genai.APIError
		if !errors.As(err, &apiErr) || (apiErr.Code != 500 && apiErr.Code != 503) || i == c.maxRetries {
			break
		}

		common.LogWarn("Gemini API call failed, retrying",
			zap.Int("attempt", i+1),
			zap.Int("code", apiErr.Code),
			zap.Duration("delay", c.retryDelay),
		)
		select {
		case <-time.After(c.retryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("gemini API call failed: %w", lastErr)
}

// Name 提供者名稱
func (c *Client) Name() string { return "gemini" }

// GetModel 模型名稱
func (c *Client) GetModel() string { return c.model }

// Close genai 客戶端不持有需要釋放的資源
func (c *Client) Close() error { return nil }
