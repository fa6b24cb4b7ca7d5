package message

import (
	"regexp"
	"strconv"
	"strings"

	"recipe-bot/internal/pkg/common"
)

const (
	segmentIngredients = iota
	segmentCuisine
	segmentRestrictions
	segmentTime
)

var digitRun = regexp.MustCompile(`\d+`)

// Tokenize 解析 "食材1, 食材2 | 菜系 | 飲食限制 | 時間" 格式。
// 第二個回傳值為 false 表示沒有任何食材。
func Tokenize(body string) (common.RecipeRequest, bool) {
	parts := strings.Split(body, "|")
	segment := func(i int) string {
		if i < len(parts) {
			return strings.TrimSpace(parts[i])
		}
		return ""
	}

	req := common.RecipeRequest{
		Ingredients:         splitList(segment(segmentIngredients)),
		DietaryRestrictions: splitList(segment(segmentRestrictions)),
	}
	if len(req.Ingredients) == 0 {
		return req, false
	}

	if cuisine := segment(segmentCuisine); cuisine != "" {
		req.Cuisine = Sanitize(cuisine)
	}
	req.CookingTime = parseCookingTime(segment(segmentTime))

	return req, true
}

// splitList 以逗號切分，保留順序與重複項目，略過空白項目
func splitList(s string) []string {
	items := []string{}
	if s == "" {
		return items
	}
	for _, raw := range strings.Split(s, ",") {
		if item := Sanitize(raw); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// parseCookingTime 取第一段連續數字作為分鐘數，沒有則回傳 0
func parseCookingTime(s string) int {
	m := digitRun.FindString(s)
	if m == "" {
		return 0
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes <= 0 {
		return 0
	}
	return minutes
}
