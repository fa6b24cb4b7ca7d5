package format

import (
	"fmt"
	"strings"

	"recipe-bot/internal/pkg/common"
)

const timeLayout = "2006-01-02 15:04:05"

// PaymentInstructions UPI 付款說明
func PaymentInstructions(upiLink, paymentID string, amount float64, vpa string) string {
	return fmt.Sprintf(`📋 *Payment Instructions*

Please complete your payment using one of these methods:

1. *Scan QR Code*: Open any UPI app and scan the QR code we'll send you
2. *Click Link*: %s
3. *Manual UPI*: Send ₹%s to %s with note: %s

Your Payment ID: %s

After payment, you'll get instant access to premium recipes! 🎉`,
		upiLink, common.FormatAmount(amount), vpa, paymentID, paymentID)
}

// PaymentHistory 付款紀錄列表，狀態圖示依供應商狀態決定
func PaymentHistory(payments []common.Payment) string {
	if len(payments) == 0 {
		return "No payments found for your account."
	}

	lines := []string{"📊 *Your Payment History*"}
	for _, p := range payments {
		status := p.ProviderStatus
		if status == "" {
			status = common.ProviderStatus(p.Status)
		}
		lines = append(lines,
			fmt.Sprintf("\n%s *Payment ID:* %s", statusEmoji(status), p.PaymentID),
			fmt.Sprintf("*Amount:* ₹%s", common.FormatAmount(p.Amount)),
			fmt.Sprintf("*Status:* %s", status),
			fmt.Sprintf("*Date:* %s", p.CreatedAt.Format(timeLayout)),
			strings.Repeat("─", 20),
		)
	}
	lines = append(lines, "\nType 'premium' to upgrade or 'help' for more options.")
	return strings.Join(lines, "\n")
}

func statusEmoji(s common.ProviderStatus) string {
	switch s {
	case common.ProviderCaptured:
		return "✅"
	case common.ProviderCreated:
		return "⏳"
	default:
		return "❌"
	}
}

// AccountInfo 帳號資訊
func AccountInfo(user *common.User) string {
	if user == nil {
		return "No account information found. Please start by sending a message to create your account."
	}

	status := "❌ Free Account"
	if user.IsPremium {
		status = "✅ Premium User"
	}
	expiry := ""
	if user.PremiumExpiry != nil {
		expiry = "\n*Premium Expires:* " + user.PremiumExpiry.Format(timeLayout)
	}

	return fmt.Sprintf(`👤 *Your Account Information*

*Phone:* %s
*Status:* %s%s
*Member Since:* %s

Type 'premium' to upgrade your account or 'payment status' to view your payment history.`,
		user.PhoneNumber, status, expiry, user.CreatedAt.Format(timeLayout))
}
