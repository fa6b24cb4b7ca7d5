package payment

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"recipe-bot/internal/pkg/common"
)

// UPILink UPI deep link 參數
type UPILink struct {
	VPA       string
	PayeeName string
	Amount    float64
	Note      string
	Currency  string
	Reference string
}

// String 依 pa, pn, am, tn, cu, tr 的順序組出 upi://pay 連結
func (l UPILink) String() string {
	params := [][2]string{
		{"pa", l.VPA},
		{"pn", l.PayeeName},
		{"am", common.FormatAmount(l.Amount)},
		{"tn", l.Note},
		{"cu", l.Currency},
		{"tr", l.Reference},
	}

	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p[0]+"="+escape(p[1]))
	}
	return "upi://pay?" + strings.Join(parts, "&")
}

// escape UPI app 不一定把 + 當成空白
func escape(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

// QRCodeSize QR 圖片邊長
const QRCodeSize = 256

// GenerateQRCode 產生 PNG，同時回傳 data URL
func GenerateQRCode(content string) ([]byte, string, error) {
	png, err := qrcode.Encode(content, qrcode.Low, QRCodeSize)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
