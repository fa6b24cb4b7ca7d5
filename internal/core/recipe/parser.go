package recipe

import (
	"regexp"
	"strconv"
	"strings"

	"recipe-bot/internal/pkg/common"
)

var (
	numberedStep = regexp.MustCompile(`^\d+\.\s*`)
	firstNumber  = regexp.MustCompile(`\d+`)
)

type section int

const (
	sectionNone section = iota
	sectionIngredients
	sectionInstructions
)

// Parsed 從模型回應解析出的欄位
type Parsed struct {
	Title        string
	Ingredients  []string
	Instructions []string
	CookingTime  int
	Difficulty   common.Difficulty
}

// ParseResponse 逐行解析模型回應。
// 標籤比對不分大小寫，Ingredients 區段只收 "-" 開頭的行，
// Instructions/Steps 區段只收 "N." 開頭的行。
func ParseResponse(text string) Parsed {
	p := Parsed{
		Ingredients:  []string{},
		Instructions: []string{},
		Difficulty:   common.DifficultyMedium,
	}

	current := sectionNone
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(lower, "title:"):
			p.Title = afterColon(line)
		case strings.Contains(lower, "ingredients:"):
			current = sectionIngredients
		case strings.Contains(lower, "instructions:"), strings.Contains(lower, "steps:"):
			current = sectionInstructions
		case strings.Contains(lower, "cooking time:"):
			if m := firstNumber.FindString(afterColon(line)); m != "" {
				p.CookingTime, _ = strconv.Atoi(m)
			}
		case strings.Contains(lower, "difficulty:"):
			p.Difficulty = common.ParseDifficulty(afterColon(line))
		case current == sectionIngredients && strings.HasPrefix(line, "-"):
			if item := strings.TrimSpace(line[1:]); item != "" {
				p.Ingredients = append(p.Ingredients, item)
			}
		case current == sectionInstructions && numberedStep.MatchString(line):
			if step := strings.TrimSpace(numberedStep.ReplaceAllString(line, "")); step != "" {
				p.Instructions = append(p.Instructions, step)
			}
		}
	}

	return p
}

// afterColon 取第一個冒號之後的內容，並移除 markdown 粗體與標題符號
func afterColon(line string) string {
	_, value, _ := strings.Cut(line, ":")
	return strings.Trim(strings.TrimSpace(value), "*# ")
}
