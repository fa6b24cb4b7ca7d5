package recipe

import (
	"fmt"
	"strings"

	"recipe-bot/internal/pkg/common"
)

// BuildPrompt 組出要求固定輸出格式的 prompt
func BuildPrompt(req common.RecipeRequest) string {
	parts := []string{
		"Generate a detailed recipe using the following ingredients:",
		"Ingredients: " + strings.Join(req.Ingredients, ", "),
	}

	if req.Cuisine != "" {
		parts = append(parts, "Cuisine style: "+req.Cuisine)
	}
	if len(req.DietaryRestrictions) > 0 {
		parts = append(parts, "Dietary restrictions: "+strings.Join(req.DietaryRestrictions, ", "))
	}
	if req.CookingTime > 0 {
		parts = append(parts, fmt.Sprintf("Maximum cooking time: %d minutes", req.CookingTime))
	}

	parts = append(parts,
		"Please provide the recipe in this exact format:",
		"Title: [Recipe Name]",
		"Ingredients:",
		"- [Ingredient 1]",
		"- [Ingredient 2]",
		"...",
		"Instructions:",
		"1. [Step 1]",
		"2. [Step 2]",
		"...",
		"Cooking Time: [X] minutes",
		"Difficulty: [Easy/Medium/Hard]",
		"Ensure the recipe is practical and quantities are specified.",
	)

	return strings.Join(parts, "\n")
}
