package webhook

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot/models"

	"recipe-bot/internal/api/handlers"
	"recipe-bot/internal/core/format"
	"recipe-bot/internal/core/message"
	"recipe-bot/internal/core/routing"
	"recipe-bot/internal/infrastructure/config"
	"recipe-bot/internal/infrastructure/messaging"
	"recipe-bot/internal/metrics"
	"recipe-bot/internal/pkg/common"
	"recipe-bot/internal/pkg/signature"
)

// TelegramClient Telegram 發送與 webhook 管理操作
type TelegramClient interface {
	messaging.Messenger
	SetWebhook(ctx context.Context, url string) error
	RemoveWebhook(ctx context.Context) error
	BotInfo(ctx context.Context) (*models.User, error)
	WebhookInfo(ctx context.Context) (*models.WebhookInfo, error)
}

// TelegramHandler Telegram webhook 處理器
type TelegramHandler struct {
	cfg    config.TelegramConfig
	client TelegramClient
	pipe   *pipeline
}

// NewTelegramHandler 創建處理器，client 為 nil 時代表未設定
func NewTelegramHandler(cfg config.TelegramConfig, client TelegramClient, normalizer message.Normalizer, router *routing.Router, dispatcher Dispatcher) *TelegramHandler {
	return &TelegramHandler{
		cfg:    cfg,
		client: client,
		pipe: &pipeline{
			platform:   message.PlatformTelegram,
			normalizer: normalizer,
			router:     router,
			messenger:  client,
			dispatcher: dispatcher,
			errorText:  format.TelegramMessages().Error,
		},
	}
}

func (h *TelegramHandler) configured(c *gin.Context) bool {
	if h.client == nil {
		handlers.Error(c, common.ErrConfiguration.Wrap(errors.New("Telegram integration not configured")))
		return false
	}
	return true
}

// Receive 接收 update
func (h *TelegramHandler) Receive(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	if !signature.VerifyToken(h.cfg.WebhookSecret, c.GetHeader("X-Telegram-Bot-Api-Secret-Token")) {
		metrics.RecordWebhook(string(message.PlatformTelegram), "unauthorized")
		handlers.Error(c, common.ErrInvalidSignature)
		return
	}

	body, ok := readBody(c)
	if !ok {
		return
	}
	h.pipe.handle(c, body)
}

// Setup 設定 webhook URL
func (h *TelegramHandler) Setup(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	url := c.Query("webhook_url")
	if url == "" {
		handlers.BadRequest(c, "webhook_url is required")
		return
	}
	if err := h.client.SetWebhook(c.Request.Context(), url); err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Status: "success", Message: "Webhook set successfully"})
}

// Info 取得 bot 與 webhook 資訊
func (h *TelegramHandler) Info(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	ctx := c.Request.Context()
	me, err := h.client.BotInfo(ctx)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	hook, err := h.client.WebhookInfo(ctx)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "bot_info": me, "webhook_info": hook})
}

// Remove 移除 webhook
func (h *TelegramHandler) Remove(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	if err := h.client.RemoveWebhook(c.Request.Context()); err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Status: "success", Message: "Webhook removed successfully"})
}
