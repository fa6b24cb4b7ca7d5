package message

import (
	"regexp"
	"strings"
)

// MaxTextLength 使用者輸入的最大長度（字元）
const MaxTextLength = 500

var unsafeChars = regexp.MustCompile(`[<>{}\[\]\\]`)

// Sanitize 移除 < > { } [ ] \ 字元、去除前後空白並截斷至 500 字元
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	cleaned := strings.TrimSpace(unsafeChars.ReplaceAllString(text, ""))
	runes := []rune(cleaned)
	if len(runes) > MaxTextLength {
		// 截斷後可能留下尾端空白
		cleaned = strings.TrimSpace(string(runes[:MaxTextLength]))
	}
	return cleaned
}
