package message

import (
	"strconv"
	"strings"

	"recipe-bot/internal/pkg/common"
)

// TelegramUpdate Bot API update 中用到的欄位
type TelegramUpdate struct {
	UpdateID int64            `json:"update_id"`
	Message  *TelegramMessage `json:"message,omitempty"`
}

// TelegramMessage 訊息
type TelegramMessage struct {
	MessageID int64         `json:"message_id"`
	Text      *string       `json:"text,omitempty"`
	Chat      *TelegramChat `json:"chat,omitempty"`
}

// TelegramChat 聊天室
type TelegramChat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

const (
	commandRecipe = "/recipe"
	commandStart  = "/start"
	commandHelp   = "/help"
)

// TelegramNormalizer Telegram 訊息正規化，只處理指令與食材格式
type TelegramNormalizer struct{}

// NewTelegramNormalizer 建立 Telegram 正規化器
func NewTelegramNormalizer() *TelegramNormalizer {
	return &TelegramNormalizer{}
}

// Normalize 解析 update 內容
func (n *TelegramNormalizer) Normalize(body []byte) (*ParsedIntent, error) {
	var update TelegramUpdate
	if err := common.ParseJSONBytes(body, &update); err != nil {
		return nil, common.ErrMalformedPayload.Wrap(err)
	}
	return n.NormalizeUpdate(&update), nil
}

// NormalizeUpdate 將 update 轉為意圖，沒有文字訊息時回傳 nil
func (n *TelegramNormalizer) NormalizeUpdate(update *TelegramUpdate) *ParsedIntent {
	if update.Message == nil || update.Message.Text == nil || update.Message.Chat == nil {
		return nil
	}

	intent := &ParsedIntent{
		Platform: PlatformTelegram,
		Sender:   strconv.FormatInt(update.Message.Chat.ID, 10),
	}

	text := strings.TrimSpace(*update.Message.Text)
	switch {
	case strings.HasPrefix(text, commandRecipe):
		text = strings.TrimSpace(strings.TrimPrefix(text, commandRecipe))
	case strings.HasPrefix(text, commandStart):
		intent.Kind = KindStart
		intent.OriginalText = text
		return intent
	case strings.HasPrefix(text, commandHelp):
		intent.Kind = KindHelp
		intent.OriginalText = text
		return intent
	}

	intent.OriginalText = text
	if text == "" {
		intent.Kind = KindEmpty
		return intent
	}

	req, ok := Tokenize(text)
	if !ok {
		intent.Kind = KindNoIngredients
		return intent
	}
	intent.Kind = KindRecipeRequest
	intent.Recipe = &req
	return intent
}
