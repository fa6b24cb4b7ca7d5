package webhook

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

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

// WhatsAppClient WhatsApp 發送與管理操作
type WhatsAppClient interface {
	messaging.Messenger
	PhoneInfo(ctx context.Context) (*messaging.PhoneInfo, error)
}

// WhatsAppHandler WhatsApp webhook 處理器
type WhatsAppHandler struct {
	cfg    config.WhatsAppConfig
	client WhatsAppClient
	pipe   *pipeline
}

// NewWhatsAppHandler 創建處理器，client 為 nil 時代表未設定
func NewWhatsAppHandler(cfg config.WhatsAppConfig, client WhatsAppClient, normalizer message.Normalizer, router *routing.Router, dispatcher Dispatcher) *WhatsAppHandler {
	return &WhatsAppHandler{
		cfg:    cfg,
		client: client,
		pipe: &pipeline{
			platform:   message.PlatformWhatsApp,
			normalizer: normalizer,
			router:     router,
			messenger:  client,
			dispatcher: dispatcher,
			errorText:  format.WhatsAppMessages().Error,
		},
	}
}

func (h *WhatsAppHandler) configured(c *gin.Context) bool {
	if h.client == nil {
		handlers.Error(c, common.ErrConfiguration.Wrap(errors.New("WhatsApp integration not configured")))
		return false
	}
	return true
}

// Verify 訂閱驗證，成功時以 text/plain 回傳 challenge
func (h *WhatsAppHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && h.cfg.VerifyToken != "" && signature.VerifyToken(h.cfg.VerifyToken, token) {
		common.LogInfo("WhatsApp webhook verified successfully")
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(challenge))
		return
	}

	common.LogWarn("WhatsApp webhook verification failed", zap.String("mode", mode))
	handlers.Error(c, common.ErrVerificationFailed)
}

// Receive 接收訊息事件
func (h *WhatsAppHandler) Receive(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	body, ok := readBody(c)
	if !ok {
		return
	}
	if !signature.VerifyHubSignature(h.cfg.AppSecret, body, c.GetHeader("X-Hub-Signature-256")) {
		metrics.RecordWebhook(string(message.PlatformWhatsApp), "unauthorized")
		handlers.Error(c, common.ErrInvalidSignature)
		return
	}

	h.pipe.handle(c, body)
}

// Info 查詢電話號碼狀態
func (h *WhatsAppHandler) Info(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	info, err := h.client.PhoneInfo(c.Request.Context())
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": info})
}

// Test 發送測試訊息
func (h *WhatsAppHandler) Test(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	phone := c.Query("phone_number")
	if phone == "" {
		handlers.BadRequest(c, "phone_number is required")
		return
	}
	if err := h.client.SendText(c.Request.Context(), phone, messaging.TestMessage); err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Status: "success", Message: "Test message sent"})
}
