package common

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateRecipeID 生成 recipe_ 前綴加 8 碼十六進位的食譜 ID
func GenerateRecipeID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "recipe_" + hex[:8]
}

// MaskSecret 遮罩憑證，只顯示前後各 4 個字符
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
