// Package routing maps a ParsedIntent to the action the webhook should take.
package routing

import (
	"recipe-bot/internal/core/message"
	"recipe-bot/internal/pkg/common"
)

// Job 延後執行的工作類型
type Job string

const (
	JobGenerateRecipe      Job = "generate_recipe"
	JobCreatePayment       Job = "create_payment"
	JobFetchPaymentHistory Job = "fetch_payment_history"
	JobFetchAccount        Job = "fetch_account"
)

// Action 路由結果：ImmediateReply、Deferred 或 Ignored
type Action interface {
	action()
}

// ImmediateReply 立即回覆固定文字
type ImmediateReply struct {
	Text string
}

// Deferred 在 webhook 回應後於背景執行
type Deferred struct {
	Job      Job
	Platform message.Platform
	Sender   string
	// Args 僅 JobGenerateRecipe 使用
	Args *common.RecipeRequest
}

// Ignored 不做任何處理
type Ignored struct {
	Reason string
}

func (ImmediateReply) action() {}
func (Deferred) action()       {}
func (Ignored) action()        {}
