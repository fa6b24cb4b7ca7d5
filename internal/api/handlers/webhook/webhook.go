// Package webhook receives WhatsApp and Telegram webhooks and acts on the routed intent.
package webhook

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-bot/internal/api/handlers"
	"recipe-bot/internal/core/message"
	"recipe-bot/internal/core/routing"
	"recipe-bot/internal/infrastructure/messaging"
	"recipe-bot/internal/metrics"
	"recipe-bot/internal/pkg/common"
)

// Dispatcher 將延後工作送入背景執行
type Dispatcher interface {
	Dispatch(d routing.Deferred) error
}

// Response webhook 回應內容
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

var processingMessages = map[routing.Job]string{
	routing.JobGenerateRecipe:      "Recipe generation started",
	routing.JobCreatePayment:       "Payment processing started",
	routing.JobFetchPaymentHistory: "Payment status request processing",
	routing.JobFetchAccount:        "Account info request processing",
}

// pipeline 平台共用的 normalize → route → act 流程
type pipeline struct {
	platform   message.Platform
	normalizer message.Normalizer
	router     *routing.Router
	messenger  messaging.Messenger
	dispatcher Dispatcher
	errorText  string
}

// readBody 讀取原始 body，簽章需對原始位元組計算
func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		handlers.BadRequest(c, "Failed to read request body")
		return nil, false
	}
	return body, true
}

func (p *pipeline) handle(c *gin.Context, body []byte) {
	intent, err := p.normalizer.Normalize(body)
	if err != nil {
		metrics.RecordWebhook(string(p.platform), "malformed")
		handlers.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	action := p.router.Route(ctx, intent)
	if intent != nil {
		metrics.RecordIntent(string(p.platform), intent.Kind.String())
	}

	switch a := action.(type) {
	case routing.ImmediateReply:
		p.reply(ctx, c, intent.Sender, a.Text)
	case routing.Deferred:
		p.enqueue(ctx, c, a)
	case routing.Ignored:
		metrics.RecordWebhook(string(p.platform), "ignored")
		c.JSON(http.StatusOK, Response{Status: "ignored", Message: a.Reason})
	default:
		metrics.RecordWebhook(string(p.platform), "ignored")
		c.JSON(http.StatusOK, Response{Status: "ignored", Message: routing.ReasonNoMessageData})
	}
}

func (p *pipeline) reply(ctx context.Context, c *gin.Context, to, text string) {
	if err := p.messenger.SendText(ctx, to, text); err != nil {
		common.LogError("Failed to send reply",
			zap.String("platform", string(p.platform)),
			zap.Error(err),
		)
		metrics.RecordWebhook(string(p.platform), "error")
		c.JSON(http.StatusOK, Response{Status: "error", Message: "Failed to send reply"})
		return
	}
	metrics.RecordWebhook(string(p.platform), "replied")
	c.JSON(http.StatusOK, Response{Status: "success", Message: "Reply sent"})
}

func (p *pipeline) enqueue(ctx context.Context, c *gin.Context, d routing.Deferred) {
	if err := p.dispatcher.Dispatch(d); err != nil {
		// 無法排入隊列時直接通知使用者，webhook 仍回 200 避免平台重送
		common.LogError("Failed to dispatch job",
			zap.String("job", string(d.Job)),
			zap.String("platform", string(p.platform)),
			zap.Error(err),
		)
		if sendErr := p.messenger.SendText(ctx, d.Sender, p.errorText); sendErr != nil {
			common.LogError("Failed to send error message", zap.Error(sendErr))
		}
		metrics.RecordWebhook(string(p.platform), "error")
		c.JSON(http.StatusOK, Response{Status: "error", Message: err.Error()})
		return
	}

	metrics.RecordWebhook(string(p.platform), "deferred")
	c.JSON(http.StatusOK, Response{Status: "processing", Message: processingMessages[d.Job]})
}
