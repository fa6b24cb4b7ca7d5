// Package messaging delivers outbound replies to WhatsApp and Telegram users.
package messaging

import (
	"context"

	"recipe-bot/internal/core/message"
)

// Messenger 平台訊息發送介面
type Messenger interface {
	SendText(ctx context.Context, to, text string) error
	SendImage(ctx context.Context, to string, png []byte, caption string) error
	Platform() message.Platform
}

// Registry 依平台取得 Messenger，未設定的平台回傳 nil
type Registry map[message.Platform]Messenger

// For 取得指定平台的 Messenger
func (r Registry) For(p message.Platform) (Messenger, bool) {
	m, ok := r[p]
	return m, ok && m != nil
}
