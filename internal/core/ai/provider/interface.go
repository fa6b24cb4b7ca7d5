package provider

import (
	"context"

	"recipe-bot/internal/core/ai"
)

// Request 表示發送到 AI 提供者的請求
type Request struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// Response 表示從 AI 提供者收到的響應
type Response struct {
	Content string   `json:"content"`
	Model   string   `json:"model"`
	Usage   ai.Usage `json:"usage"`
}

// Provider 定義 AI 提供者介面
type Provider interface {
	// Generate 生成 AI 響應，內容為空時回傳 common.ErrEmptyUpstream
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Name 提供者名稱，用於日誌與指標
	Name() string

	// GetModel 獲取當前使用的模型名稱
	GetModel() string

	// Close 關閉提供者連接
	Close() error
}
