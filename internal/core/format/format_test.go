package format

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"recipe-bot/internal/pkg/common"
)

func sampleRecipe() *common.Recipe {
	return &common.Recipe{
		RecipeID:     "recipe_1a2b3c4d",
		Title:        "Chicken Risotto",
		Ingredients:  []string{"chicken", "rice", "stock"},
		Instructions: []string{"Brown the chicken", "Toast the rice"},
		CookingTime:  45,
		Difficulty:   common.DifficultyMedium,
	}
}

func countPrefix(text, prefix string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

func TestWhatsAppRecipe(t *testing.T) {
	out := WhatsApp{}.Recipe(sampleRecipe())

	assert.True(t, strings.HasPrefix(out, "🍳 *Recipe Generated* 🍳\n*Chicken Risotto*\n"))
	assert.Equal(t, 3, countPrefix(out, "• "))
	assert.Contains(t, out, "• chicken\n• rice\n• stock")
	assert.Contains(t, out, "1. Brown the chicken\n2. Toast the rice")
	assert.Contains(t, out, "*Cooking Time:* 45 minutes")
	assert.Contains(t, out, "*Difficulty:* Medium")
	assert.True(t, strings.HasSuffix(out, "Type 'more' for additional options or send new ingredients for another recipe."))
}

func TestTelegramRecipe(t *testing.T) {
	out := Telegram{}.Recipe(sampleRecipe())

	assert.True(t, strings.HasPrefix(out, "*🍳 Chicken Risotto 🍳*"))
	assert.Equal(t, 3, countPrefix(out, "• "))
	// Markdown 舊版不支援跳脫句點
	assert.Contains(t, out, "\n1. Brown the chicken\n2. Toast the rice")
	assert.NotContains(t, out, "\\.")
	assert.True(t, strings.HasSuffix(out, "*Recipe ID:* `recipe_1a2b3c4d`"))
}

func TestRecipeBlankTitle(t *testing.T) {
	for _, f := range []Formatter{WhatsApp{}, Telegram{}} {
		r := sampleRecipe()
		r.Title = "   "
		assert.Equal(t, NoRecipeMessage, f.Recipe(r))
		assert.Equal(t, NoRecipeMessage, f.Recipe(nil))
	}
}

func TestRecipeEmptySections(t *testing.T) {
	r := &common.Recipe{Title: "Toast", Difficulty: common.DifficultyEasy}
	out := WhatsApp{}.Recipe(r)

	assert.Equal(t, 0, countPrefix(out, "• "))
	assert.Contains(t, out, "*Ingredients:*\n\n*Instructions:*\n\n*Cooking Time:* 0 minutes")
}

func TestMoreOptionsFor(t *testing.T) {
	m := WhatsAppMessages()
	assert.Equal(t, "Type 'help' for options or send new ingredients for another recipe.", m.MoreOptionsFor(""))
	assert.True(t, strings.HasSuffix(m.MoreOptionsFor("recipe_deadbeef"), "Recipe ID: recipe_deadbeef"))
}

func TestTelegramMessagesOverride(t *testing.T) {
	m := TelegramMessages()
	assert.Equal(t, "Please provide some ingredients! Type /help for instructions.", m.Empty)
	assert.Equal(t, "Error: No ingredients provided. Type /help for instructions.", m.NoIngredients)
	assert.Contains(t, m.Welcome, "/recipe")
	assert.Equal(t, WhatsAppMessages().PaymentConfirmation, m.PaymentConfirmation)
}

func TestPaymentHistory(t *testing.T) {
	assert.Equal(t, "No payments found for your account.", PaymentHistory(nil))

	created := time.Date(2025, 9, 13, 10, 30, 0, 0, time.UTC)
	out := PaymentHistory([]common.Payment{
		{PaymentID: "order_1", Amount: 100, ProviderStatus: common.ProviderCaptured, CreatedAt: created},
		{PaymentID: "order_2", Amount: 100, ProviderStatus: common.ProviderCreated, CreatedAt: created},
		{PaymentID: "order_3", Amount: 99.5, ProviderStatus: common.ProviderFailed, CreatedAt: created},
	})

	assert.Contains(t, out, "✅ *Payment ID:* order_1")
	assert.Contains(t, out, "⏳ *Payment ID:* order_2")
	assert.Contains(t, out, "❌ *Payment ID:* order_3")
	assert.Contains(t, out, "*Amount:* ₹99.50")
	assert.Contains(t, out, "*Date:* 2025-09-13 10:30:00")
}

func TestPaymentInstructions(t *testing.T) {
	out := PaymentInstructions("upi://pay?pa=bot@upi", "order_9", 100, "bot@upi")
	assert.Contains(t, out, "*Click Link*: upi://pay?pa=bot@upi")
	assert.Contains(t, out, "Send ₹100 to bot@upi with note: order_9")
	assert.Contains(t, out, "Your Payment ID: order_9")
}

func TestAccountInfo(t *testing.T) {
	assert.Contains(t, AccountInfo(nil), "No account information found")

	expiry := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := AccountInfo(&common.User{PhoneNumber: "919876543210", IsPremium: true, PremiumExpiry: &expiry})
	assert.Contains(t, out, "*Phone:* 919876543210")
	assert.Contains(t, out, "✅ Premium User")
	assert.Contains(t, out, "*Premium Expires:* 2026-01-01 00:00:00")

	free := AccountInfo(&common.User{PhoneNumber: "1"})
	assert.Contains(t, free, "❌ Free Account")
	assert.NotContains(t, free, "Premium Expires")
}
