package message

import (
	"strings"

	"recipe-bot/internal/pkg/common"
)

// Normalizer 將平台原始 webhook 內容轉為 ParsedIntent。
// 回傳 nil intent 且無錯誤表示事件中沒有可處理的訊息。
type Normalizer interface {
	Normalize(body []byte) (*ParsedIntent, error)
}

// WhatsAppPayload Cloud API webhook 結構
type WhatsAppPayload struct {
	Object string          `json:"object"`
	Entry  []WhatsAppEntry `json:"entry"`
}

// WhatsAppEntry webhook entry
type WhatsAppEntry struct {
	ID      string           `json:"id"`
	Changes []WhatsAppChange `json:"changes"`
}

// WhatsAppChange webhook change
type WhatsAppChange struct {
	Field string        `json:"field"`
	Value WhatsAppValue `json:"value"`
}

// WhatsAppValue change 的內容，狀態回呼只有 statuses 沒有 messages
type WhatsAppValue struct {
	MessagingProduct string            `json:"messaging_product"`
	Messages         []WhatsAppMessage `json:"messages"`
	Statuses         []WhatsAppStatus  `json:"statuses"`
}

// WhatsAppStatus 送達狀態回呼
type WhatsAppStatus struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	RecipientID string `json:"recipient_id"`
}

// WhatsAppMessage 單則訊息
type WhatsAppMessage struct {
	From        string               `json:"from"`
	ID          string               `json:"id"`
	Timestamp   string               `json:"timestamp"`
	Type        string               `json:"type"`
	Text        *WhatsAppText        `json:"text,omitempty"`
	Interactive *WhatsAppInteractive `json:"interactive,omitempty"`
}

// WhatsAppText 文字訊息內容
type WhatsAppText struct {
	Body string `json:"body"`
}

// WhatsAppInteractive 互動訊息回覆
type WhatsAppInteractive struct {
	Type        string         `json:"type"`
	ButtonReply *WhatsAppReply `json:"button_reply,omitempty"`
	ListReply   *WhatsAppReply `json:"list_reply,omitempty"`
}

// WhatsAppReply 按鈕或清單選項
type WhatsAppReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// WhatsAppNormalizer WhatsApp 訊息正規化
type WhatsAppNormalizer struct {
	classifier *Classifier
}

// NewWhatsAppNormalizer 建立 WhatsApp 正規化器，classifier 為 nil 時使用預設規則
func NewWhatsAppNormalizer(classifier *Classifier) *WhatsAppNormalizer {
	if classifier == nil {
		classifier = NewClassifier(MatchWord, nil)
	}
	return &WhatsAppNormalizer{classifier: classifier}
}

// Normalize 解析 webhook 內容
func (n *WhatsAppNormalizer) Normalize(body []byte) (*ParsedIntent, error) {
	var payload WhatsAppPayload
	if err := common.ParseJSONBytes(body, &payload); err != nil {
		return nil, common.ErrMalformedPayload.Wrap(err)
	}
	return n.NormalizePayload(&payload), nil
}

// NormalizePayload 走訪 entry → changes → value，取第一個有寄件者的 messages[0]
func (n *WhatsAppNormalizer) NormalizePayload(payload *WhatsAppPayload) *ParsedIntent {
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if len(change.Value.Messages) == 0 {
				continue
			}
			msg := change.Value.Messages[0]
			if msg.From == "" {
				continue
			}
			return n.classify(&msg)
		}
	}
	return nil
}

func (n *WhatsAppNormalizer) classify(msg *WhatsAppMessage) *ParsedIntent {
	intent := &ParsedIntent{Platform: PlatformWhatsApp, Sender: msg.From}

	if msg.Type == "interactive" && msg.Interactive != nil {
		switch msg.Interactive.Type {
		case "button_reply":
			intent.Kind = KindButtonInteraction
			if msg.Interactive.ButtonReply != nil {
				intent.InteractionID = msg.Interactive.ButtonReply.ID
			}
			return intent
		case "list_reply":
			intent.Kind = KindListInteraction
			if msg.Interactive.ListReply != nil {
				intent.InteractionID = msg.Interactive.ListReply.ID
			}
			return intent
		}
	}

	if msg.Type != "text" {
		intent.Kind = KindUnsupported
		return intent
	}

	// 缺少 text 物件視為空白內容
	var body string
	if msg.Text != nil {
		body = msg.Text.Body
	}
	text := strings.TrimSpace(body)
	intent.OriginalText = text
	if text == "" {
		intent.Kind = KindEmpty
		return intent
	}

	if kind, ok := n.classifier.Classify(strings.ToLower(text)); ok {
		intent.Kind = kind
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
