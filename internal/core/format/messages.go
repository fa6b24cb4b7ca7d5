package format

import "fmt"

// Messages 平台固定回覆文字
type Messages struct {
	Welcome             string
	Help                string
	Empty               string
	NoIngredients       string
	Unsupported         string
	MoreOptions         string
	ThankYou            string
	Goodbye             string
	HowAreYou           string
	Capabilities        string
	PaymentConfirmation string

	Processing        string
	Error             string
	Payment           string
	PaymentProcessing string
	PaymentSuccess    string
	PaymentFailed     string
	PaymentQRCaption  string
}

// MoreOptionsFor 有上一筆食譜 ID 時的延伸選項訊息
func (m Messages) MoreOptionsFor(recipeID string) string {
	if recipeID == "" {
		return m.MoreOptions
	}
	return fmt.Sprintf(`🔍 *Additional Options for Recipe*

What would you like to do next?
• Get similar recipes
• Save this recipe
• Convert measurements
• Get nutritional information
• Start over with new ingredients

Reply with your choice or send new ingredients for another recipe.

Recipe ID: %s`, recipeID)
}

const (
	genericMoreOptions  = "Type 'help' for options or send new ingredients for another recipe."
	paymentConfirmation = "Thank you for confirming your payment. We'll verify it and update your account shortly."
)

// WhatsAppMessages WhatsApp 回覆文字
func WhatsAppMessages() Messages {
	return Messages{
		Welcome: `👋 *Welcome to Food Recipe Bot!* 🍳

I can help you discover delicious recipes based on ingredients you have.

📋 *How to use:*
Send your ingredients in this format:
` + "`ingredient1, ingredient2 | cuisine | dietary restrictions | cooking time`" + `

💰 *Premium Features:*
Type 'premium' to upgrade for:
• Exclusive recipes from top chefs
• Step-by-step video guides
• Nutritional information
• Meal planning features

✨ *Examples:*
• ` + "`chicken, rice, vegetables`" + `
• ` + "`pasta, tomato | Italian | vegetarian | 30`" + `
• ` + "`eggs, cheese | | gluten-free`" + `

💡 *Quick commands:*
• *help* - Show detailed instructions
• *more* - Get additional options after a recipe
• *premium* - Upgrade to premium features

Send your ingredients now to get started! 🥘`,

		Help: `📖 *Food Recipe Bot Help*

🥕 *Format your message:*
` + "`ingredients | cuisine | dietary restrictions | cooking time`" + `

💰 *Premium Features:*
Type 'premium' to unlock:
• Exclusive chef recipes
• Video cooking guides
• Nutritional analysis
• Meal planning tools

🍝 *Examples:*
• Basic: ` + "`chicken, rice, vegetables`" + `
• With cuisine: ` + "`pasta, tomato | Italian`" + `
• With restrictions: ` + "`beans, corn | Mexican | vegan`" + `
• With time: ` + "`eggs, cheese | | | 15`" + `

🌱 *Supported dietary restrictions:*
vegetarian, vegan, gluten-free, dairy-free, nut-free

🌍 *Supported cuisines:*
Italian, Mexican, Chinese, Indian, Thai, Mediterranean, American

⏱️ *Cooking time:*
Specify maximum preparation time in minutes

Type 'start' to begin or send your ingredients now!`,

		Empty: "Please send some ingredients!",

		NoIngredients: `❌ No ingredients detected.

Please send your ingredients in this format:
` + "`ingredient1, ingredient2, ingredient3`" + `

Examples:
• ` + "`chicken, rice, vegetables`" + `
• ` + "`pasta, tomato, basil`" + `
• ` + "`eggs, cheese, milk`" + `

Type 'help' for more detailed instructions.`,

		Unsupported: `❌ *Unsupported message type*

I can only process text messages at this time. Please send your ingredients as text.

Examples:
• ` + "`chicken, rice, vegetables`" + `
• ` + "`pasta, tomato | Italian`" + `

Type 'help' for more instructions.`,

		MoreOptions: genericMoreOptions,

		ThankYou: `🙏 You're welcome!

I'm glad I could help you with your recipe needs.

If you enjoyed the recipe or have any feedback, please let me know!

What would you like to do next?
• Get another recipe with different ingredients
• Type 'help' for instructions
• Type 'more' for additional options on your last recipe`,

		Goodbye: `👋 Goodbye!

Thank you for using the Food Recipe Bot. I hope you enjoyed your cooking experience!

Feel free to come back anytime you need recipe ideas or cooking inspiration.

Happy cooking! 🍳`,

		HowAreYou: `🤖 I'm doing great, thank you for asking!

I'm always here and ready to help you discover delicious recipes based on whatever ingredients you have available.

What can I help you cook today?`,

		Capabilities: `🌟 *What I Can Do*

I'm your personal recipe assistant! Here's what I can help you with:

🍳 *Recipe Generation*
- Create recipes based on ingredients you have
- Suggest cuisine styles (Italian, Mexican, etc.)
- Accommodate dietary restrictions (vegan, gluten-free, etc.)
- Adjust for cooking time constraints

💰 *Premium Features*
- Exclusive recipes from top chefs
- Step-by-step video cooking guides
- Detailed nutritional information
- Personalized meal planning

💡 *How to Use*
Just send me your ingredients in this format:
` + "`ingredient1, ingredient2 | cuisine | restrictions | time`" + `

Type 'help' for more detailed instructions!`,

		PaymentConfirmation: paymentConfirmation,

		Processing: `⏳ *Processing your request...*

I'm generating a recipe based on your ingredients. This may take a few moments.

In the meantime, you can:
• Type 'help' for instructions
• Send 'more' after receiving your recipe for additional options`,

		Error: `❌ *Sorry, something went wrong.*

Please try again in a moment. If the problem persists, try rephrasing your request.

Examples:
• ` + "`chicken, rice`" + `
• ` + "`pasta, tomato | Italian`" + `

Type 'help' for more instructions.`,

		Payment: `💰 *Premium Recipe Access Payment* 💰

Upgrade to premium for:
• Exclusive recipes from top chefs
• Step-by-step video guides
• Nutritional information
• Meal planning features
• Priority support

Reply with 'pay' to continue with payment.`,

		PaymentProcessing: `⏳ *Processing your payment request...*

We're setting up a secure payment link for you. This will only take a moment.`,

		PaymentSuccess: `🎉 *Payment Successful!* 🎉

Thank you for upgrading to premium! You now have access to:

• Exclusive premium recipes
• Step-by-step video guides
• Nutritional information
• Meal planning features
• Priority support

Enjoy your enhanced cooking experience! 🍳`,

		PaymentFailed: `❌ *Payment Failed*

We couldn't process your payment. This could be due to:
• Insufficient funds
• Network issues
• Payment cancellation

Please try again or contact support if the issue persists.`,

		PaymentQRCaption: "Scan this QR code with any UPI app to complete your payment:",
	}
}

// TelegramMessages Telegram 回覆文字（Markdown）
func TelegramMessages() Messages {
	m := WhatsAppMessages()

	m.Welcome = `*Welcome to Food Recipe Bot!* 🍳

I can help you create delicious recipes from ingredients you have available.

*How to use:*
• Send me a list of ingredients like: ` + "`chicken, rice, vegetables`" + `
• Or use the format: ` + "`ingredient1, ingredient2 | cuisine | restrictions | time`" + `

*Examples:*
• ` + "`tomatoes, pasta, basil | Italian | vegetarian | 30`" + `
• ` + "`chicken, potatoes, carrots | | gluten-free | 60`" + `
• ` + "`eggs, flour, sugar, chocolate`" + `

*Available commands:*
/start - Show this welcome message
/help - Show help information
/recipe - Generate a recipe (you can also just send ingredients)

*Bon appétit!* 🍽️`

	m.Help = `*Food Recipe Bot Help* 🆘

*Format your request:*
` + "`ingredient1, ingredient2, ingredient3 | cuisine | dietary restrictions | cooking time`" + `

*All fields except ingredients are optional!*

*Cuisine options:* Italian, Mexican, Chinese, Indian, Thai, American, Mediterranean, Japanese, French

*Dietary restrictions:* vegetarian, vegan, gluten-free, dairy-free, nut-free, keto, paleo, low-carb

*Cooking time:* Maximum time in minutes (e.g., 30, 60, 120)

*Examples:*
• ` + "`chicken, rice, broccoli | Chinese | | 45`" + `
• ` + "`tofu, bell peppers, onions | | vegan, gluten-free | 30`" + `
• ` + "`flour, eggs, milk, sugar`" + ` (simple format)

*Need more help?* Just send your ingredients and I'll create something delicious! 🍳`

	m.Empty = "Please provide some ingredients! Type /help for instructions."
	m.NoIngredients = "Error: No ingredients provided. Type /help for instructions."
	m.Unsupported = "I can only read text messages. Type /help for instructions."
	m.MoreOptions = "Send new ingredients for another recipe or type /help for options."
	m.Processing = "⌨️"
	m.Error = "Sorry, I encountered an error generating your recipe. Please try again with different ingredients or format."
	return m
}
