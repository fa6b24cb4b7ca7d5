package jobs

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"recipe-bot/internal/core/format"
	"recipe-bot/internal/core/payment"
	"recipe-bot/internal/infrastructure/messaging"
	"recipe-bot/internal/pkg/common"
)

// PaymentNotifier 付款成功後以 WhatsApp 通知使用者
type PaymentNotifier struct {
	messenger messaging.Messenger
}

var _ payment.Notifier = (*PaymentNotifier)(nil)

// NewPaymentNotifier 創建通知器，m 為 nil 時不發送
func NewPaymentNotifier(m messaging.Messenger) *PaymentNotifier {
	return &PaymentNotifier{messenger: m}
}

// PaymentConfirmed 實作 payment.Notifier
func (n *PaymentNotifier) PaymentConfirmed(ctx context.Context, p *common.Payment) error {
	if n.messenger == nil {
		common.LogDebug("Payment notification skipped, no messenger", zap.String("payment_id", p.PaymentID))
		return nil
	}
	if p.CustomerPhone == "" {
		return errors.New("payment has no customer phone")
	}
	return n.messenger.SendText(ctx, p.CustomerPhone, format.WhatsAppMessages().PaymentSuccess)
}
