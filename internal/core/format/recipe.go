// Package format renders recipes and account data into chat message text.
package format

import (
	"fmt"
	"strings"

	"recipe-bot/internal/pkg/common"
)

// NoRecipeMessage 食譜標題為空時的道歉訊息
const NoRecipeMessage = "❌ I couldn't generate a recipe with those ingredients. Please try different ingredients or check your formatting."

// Formatter 將食譜渲染為平台訊息
type Formatter interface {
	Recipe(r *common.Recipe) string
}

// WhatsApp 使用 *粗體* 的 WhatsApp 樣式
type WhatsApp struct{}

// Recipe 渲染食譜
func (WhatsApp) Recipe(r *common.Recipe) string {
	if r == nil || strings.TrimSpace(r.Title) == "" {
		return NoRecipeMessage
	}

	lines := []string{
		"🍳 *Recipe Generated* 🍳",
		fmt.Sprintf("*%s*", r.Title),
		"",
		"*Ingredients:*",
	}
	lines = append(lines, bullets(r.Ingredients)...)
	lines = append(lines, "", "*Instructions:*")
	lines = append(lines, numbered(r.Instructions)...)
	lines = append(lines,
		"",
		fmt.Sprintf("*Cooking Time:* %d minutes", r.CookingTime),
		fmt.Sprintf("*Difficulty:* %s", r.Difficulty),
		"",
		"Enjoy your meal! 🍽️",
		"",
		"Type 'more' for additional options or send new ingredients for another recipe.",
	)
	return strings.Join(lines, "\n")
}

// Telegram 使用 Markdown 的 Telegram 樣式，結尾附上食譜 ID
type Telegram struct{}

// Recipe 渲染食譜
func (Telegram) Recipe(r *common.Recipe) string {
	if r == nil || strings.TrimSpace(r.Title) == "" {
		return NoRecipeMessage
	}

	lines := []string{
		fmt.Sprintf("*🍳 %s 🍳*", r.Title),
		"",
		"*📋 Ingredients:*",
	}
	lines = append(lines, bullets(r.Ingredients)...)
	lines = append(lines, "", "*👩‍🍳 Instructions:*")
	lines = append(lines, numbered(r.Instructions)...)
	lines = append(lines,
		"",
		fmt.Sprintf("*⏰ Cooking Time:* %d minutes", r.CookingTime),
		fmt.Sprintf("*📊 Difficulty:* %s", r.Difficulty),
		"",
		"*Enjoy your meal!* 🍽️",
		"",
		fmt.Sprintf("*Recipe ID:* `%s`", r.RecipeID),
	)
	return strings.Join(lines, "\n")
}

func bullets(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, "• "+item)
	}
	return out
}

func numbered(steps []string) []string {
	out := make([]string, 0, len(steps))
	for i, step := range steps {
		out = append(out, fmt.Sprintf("%d. %s", i+1, step))
	}
	return out
}
