package messaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"recipe-bot/internal/core/message"
	"recipe-bot/internal/infrastructure/config"
	"recipe-bot/internal/pkg/common"
)

// TelegramClient Telegram Bot API 客戶端
type TelegramClient struct {
	bot    *bot.Bot
	secret string
}

var _ Messenger = (*TelegramClient)(nil)

// NewTelegramClient 創建 Telegram 客戶端，不在啟動時呼叫 getMe
func NewTelegramClient(cfg config.TelegramConfig) (*TelegramClient, error) {
	if !cfg.Enabled() {
		return nil, common.ErrConfiguration.Wrap(errors.New("telegram bot token is required"))
	}

	opts := []bot.Option{
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(cfg.Timeout, &http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.ServerURL != "" {
		opts = append(opts, bot.WithServerURL(cfg.ServerURL))
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		return nil, common.ErrMessaging.Wrap(fmt.Errorf("create telegram bot: %w", err))
	}
	return &TelegramClient{bot: b, secret: cfg.WebhookSecret}, nil
}

// Platform 實作 Messenger
func (c *TelegramClient) Platform() message.Platform { return message.PlatformTelegram }

// SendText 以 Markdown 發送文字訊息
func (c *TelegramClient) SendText(ctx context.Context, chatID, text string) error {
	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
	})
	if err != nil {
		return common.ErrMessaging.Wrap(fmt.Errorf("send telegram message: %w", err))
	}
	common.LogDebug("Telegram message sent", zap.String("chat_id", chatID))
	return nil
}

// SendImage 以檔案上傳方式發送圖片
func (c *TelegramClient) SendImage(ctx context.Context, chatID string, png []byte, caption string) error {
	_, err := c.bot.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileUpload{Filename: "payment_qr.png", Data: bytes.NewReader(png)},
		Caption: caption,
	})
	if err != nil {
		return common.ErrMessaging.Wrap(fmt.Errorf("send telegram photo: %w", err))
	}
	return nil
}

// SetWebhook 設定 webhook，有設定 secret 時一併帶上
func (c *TelegramClient) SetWebhook(ctx context.Context, url string) error {
	ok, err := c.bot.SetWebhook(ctx, &bot.SetWebhookParams{URL: url, SecretToken: c.secret})
	if err != nil {
		return common.ErrMessaging.Wrap(fmt.Errorf("set telegram webhook: %w", err))
	}
	if !ok {
		return common.ErrMessaging.Wrap(errors.New("telegram rejected webhook"))
	}
	common.LogInfo("Telegram webhook set", zap.String("url", url))
	return nil
}

// RemoveWebhook 移除 webhook
func (c *TelegramClient) RemoveWebhook(ctx context.Context) error {
	if _, err := c.bot.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
		return common.ErrMessaging.Wrap(fmt.Errorf("delete telegram webhook: %w", err))
	}
	common.LogInfo("Telegram webhook removed")
	return nil
}

// BotInfo 取得 bot 資訊
func (c *TelegramClient) BotInfo(ctx context.Context) (*models.User, error) {
	me, err := c.bot.GetMe(ctx)
	if err != nil {
		return nil, common.ErrMessaging.Wrap(fmt.Errorf("get telegram bot info: %w", err))
	}
	return me, nil
}

// WebhookInfo 取得目前的 webhook 設定
func (c *TelegramClient) WebhookInfo(ctx context.Context) (*models.WebhookInfo, error) {
	info, err := c.bot.GetWebhookInfo(ctx)
	if err != nil {
		return nil, common.ErrMessaging.Wrap(fmt.Errorf("get telegram webhook info: %w", err))
	}
	return info, nil
}
