package messaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"recipe-bot/internal/core/message"
	"recipe-bot/internal/infrastructure/config"
	"recipe-bot/internal/pkg/common"
)

// TestMessage 整合測試用的訊息內容
const TestMessage = "🚀 WhatsApp integration test successful!\n\nThis is a test message from your Food Recipe Bot. Send your ingredients to get started!"

// Graph API 的 token 過期錯誤碼
const graphTokenExpiredCode = 190

// WhatsAppClient WhatsApp Cloud API 客戶端
type WhatsAppClient struct {
	client        *resty.Client
	phoneNumberID string
}

var _ Messenger = (*WhatsAppClient)(nil)

type whatsAppText struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type whatsAppImage struct {
	ID      string `json:"id"`
	Caption string `json:"caption,omitempty"`
}

type whatsAppMessage struct {
	MessagingProduct string         `json:"messaging_product"`
	RecipientType    string         `json:"recipient_type"`
	To               string         `json:"to"`
	Type             string         `json:"type"`
	Text             *whatsAppText  `json:"text,omitempty"`
	Image            *whatsAppImage `json:"image,omitempty"`
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// PhoneInfo 電話號碼資訊
type PhoneInfo struct {
	ID                 string `json:"id"`
	DisplayPhoneNumber string `json:"display_phone_number"`
	QualityRating      string `json:"quality_rating"`
	Status             string `json:"status"`
}

// NewWhatsAppClient 創建 WhatsApp 客戶端
func NewWhatsAppClient(cfg config.WhatsAppConfig) (*WhatsAppClient, error) {
	if !cfg.Enabled() {
		return nil, common.ErrConfiguration.Wrap(errors.New("WhatsApp access token and phone number ID are required"))
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/") + "/" + cfg.APIVersion).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.AccessToken)

	return &WhatsAppClient{client: client, phoneNumberID: cfg.PhoneNumberID}, nil
}

// Platform 實作 Messenger
func (c *WhatsAppClient) Platform() message.Platform { return message.PlatformWhatsApp }

// SendText 發送文字訊息
func (c *WhatsAppClient) SendText(ctx context.Context, to, text string) error {
	return c.send(ctx, whatsAppMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             &whatsAppText{Body: text},
	})
}

// SendImage 先上傳圖片取得 media ID 再發送
func (c *WhatsAppClient) SendImage(ctx context.Context, to string, png []byte, caption string) error {
	mediaID, err := c.UploadMedia(ctx, png, "image/png", "payment_qr.png")
	if err != nil {
		return err
	}
	return c.send(ctx, whatsAppMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "image",
		Image:            &whatsAppImage{ID: mediaID, Caption: caption},
	})
}

// UploadMedia 上傳媒體檔案，回傳 media ID
func (c *WhatsAppClient) UploadMedia(ctx context.Context, data []byte, mimeType, filename string) (string, error) {
	if len(data) == 0 {
		return "", common.NewValidationError("media content is empty")
	}

	var result struct {
		ID string `json:"id"`
	}
	var apiErr graphError
	resp, err := c.client.R().
		SetContext(ctx).
		SetMultipartField("file", filename, mimeType, bytes.NewReader(data)).
		SetMultipartFormData(map[string]string{"messaging_product": "whatsapp", "type": mimeType}).
		ForceContentType("application/json").
		SetResult(&result).
		SetError(&apiErr).
		Post("/" + c.phoneNumberID + "/media")
	if err != nil {
		return "", common.ErrMessaging.Wrap(fmt.Errorf("upload media: %w", err))
	}
	if resp.IsError() {
		return "", c.apiError("upload media", resp.StatusCode(), apiErr)
	}
	if result.ID == "" {
		return "", common.ErrMessaging.Wrap(errors.New("no media ID in upload response"))
	}

	common.LogDebug("WhatsApp media uploaded", zap.String("media_id", result.ID), zap.Int("size", len(data)))
	return result.ID, nil
}

// PhoneInfo 查詢電話號碼狀態
func (c *WhatsAppClient) PhoneInfo(ctx context.Context) (*PhoneInfo, error) {
	var info PhoneInfo
	var apiErr graphError
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("fields", "display_phone_number,quality_rating,status").
		ForceContentType("application/json").
		SetResult(&info).
		SetError(&apiErr).
		Get("/" + c.phoneNumberID)
	if err != nil {
		return nil, common.ErrMessaging.Wrap(fmt.Errorf("phone info: %w", err))
	}
	if resp.IsError() {
		return nil, c.apiError("phone info", resp.StatusCode(), apiErr)
	}
	return &info, nil
}

func (c *WhatsAppClient) send(ctx context.Context, msg whatsAppMessage) error {
	var apiErr graphError
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(msg).
		ForceContentType("application/json").
		SetError(&apiErr).
		Post("/" + c.phoneNumberID + "/messages")
	if err != nil {
		return common.ErrMessaging.Wrap(fmt.Errorf("send %s message: %w", msg.Type, err))
	}
	if resp.IsError() {
		return c.apiError("send "+msg.Type+" message", resp.StatusCode(), apiErr)
	}

	common.LogDebug("WhatsApp message sent", zap.String("type", msg.Type), zap.String("to", msg.To))
	return nil
}

func (c *WhatsAppClient) apiError(op string, status int, apiErr graphError) error {
	cause := fmt.Errorf("%s: status %d: %s", op, status, apiErr.Error.Message)
	if apiErr.Error.Code == graphTokenExpiredCode {
		return common.ErrTokenExpired.Wrap(cause)
	}
	if status == http.StatusNotFound {
		return common.ErrNotFound.Wrap(cause)
	}
	return common.ErrMessaging.Wrap(cause)
}
