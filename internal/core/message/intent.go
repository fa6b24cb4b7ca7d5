// Package message normalizes raw platform webhook payloads into a single
// ParsedIntent the router can act on.
package message

import "recipe-bot/internal/pkg/common"

// Platform 訊息來源平台
type Platform string

const (
	PlatformWhatsApp Platform = "whatsapp"
	PlatformTelegram Platform = "telegram"
)

// Kind 意圖類型
type Kind int

const (
	KindStart Kind = iota
	KindHelp
	KindEmpty
	KindNoIngredients
	KindUnsupported
	KindMoreOptions
	KindThankYou
	KindGoodbye
	KindHowAreYou
	KindCapabilities
	KindPaymentRequest
	KindPaymentStatus
	KindPaymentConfirmation
	KindAccountInfo
	KindButtonInteraction
	KindListInteraction
	KindRecipeRequest
)

var kindNames = [...]string{
	KindStart:               "start",
	KindHelp:                "help",
	KindEmpty:               "empty",
	KindNoIngredients:       "no_ingredients",
	KindUnsupported:         "unsupported",
	KindMoreOptions:         "more_options",
	KindThankYou:            "thank_you",
	KindGoodbye:             "goodbye",
	KindHowAreYou:           "how_are_you",
	KindCapabilities:        "capabilities",
	KindPaymentRequest:      "payment_request",
	KindPaymentStatus:       "payment_status",
	KindPaymentConfirmation: "payment_confirmation",
	KindAccountInfo:         "account_info",
	KindButtonInteraction:   "button_interaction",
	KindListInteraction:     "list_interaction",
	KindRecipeRequest:       "recipe_request",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParsedIntent 單一入站事件的正規化結果
type ParsedIntent struct {
	Kind     Kind
	Platform Platform
	// Sender 為 WhatsApp 的 from 號碼或 Telegram 的 chat id
	Sender string

	// InteractionID 為按鈕或清單回覆的 id
	InteractionID string

	// Recipe 僅在 KindRecipeRequest 時有值
	Recipe       *common.RecipeRequest
	OriginalText string
}
