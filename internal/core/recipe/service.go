// Package recipe turns recipe requests into persisted recipes via the generative backend.
package recipe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"recipe-bot/internal/core/ai"
	"recipe-bot/internal/core/message"
	"recipe-bot/internal/pkg/common"
)

// Generator 產生 prompt 回應的 AI 服務
type Generator interface {
	ProcessRequest(ctx context.Context, prompt string) (*ai.Response, error)
}

// Repository 食譜存取
type Repository interface {
	SaveRecipe(ctx context.Context, r *common.Recipe) error
	GetRecipe(ctx context.Context, recipeID string) (*common.Recipe, error)
	ListRecentRecipes(ctx context.Context, limit int) ([]common.Recipe, error)
}

// Service 食譜服務
type Service struct {
	generator Generator
	repo      Repository
	newID     func() string
	now       func() time.Time
}

// NewService 創建新的食譜服務
func NewService(generator Generator, repo Repository) *Service {
	return &Service{
		generator: generator,
		repo:      repo,
		newID:     common.GenerateRecipeID,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Generate 生成食譜並存檔。
// 回應為空時回傳 common.ErrEmptyUpstream，解析不出標題時回傳 common.ErrRecipeParse。
func (s *Service) Generate(ctx context.Context, req common.RecipeRequest) (*common.Recipe, error) {
	req = sanitizeRequest(req)
	if len(req.Ingredients) == 0 {
		return nil, common.NewValidationError("at least one ingredient is required")
	}

	resp, err := s.generator.ProcessRequest(ctx, BuildPrompt(req))
	if err != nil {
		var ce *common.CustomError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, common.ErrBackendFailure.Wrap(err)
	}
	if resp == nil || resp.Content == "" {
		return nil, common.ErrEmptyUpstream
	}

	parsed := ParseResponse(resp.Content)
	if parsed.Title == "" {
		common.LogWarn("Recipe response has no title",
			zap.Int("content_length", len(resp.Content)),
			zap.Bool("cache_hit", resp.CacheHit),
		)
		return nil, common.ErrRecipeParse
	}

	cookingTime := parsed.CookingTime
	if cookingTime == 0 {
		cookingTime = req.CookingTime
	}

	r := &common.Recipe{
		RecipeID:     s.newID(),
		Title:        parsed.Title,
		Ingredients:  parsed.Ingredients,
		Instructions: parsed.Instructions,
		CookingTime:  cookingTime,
		Difficulty:   parsed.Difficulty,
		UserQuery:    req.UserQuery(),
		CreatedAt:    s.now(),
	}

	if err := s.repo.SaveRecipe(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}

	common.LogInfo("Recipe generated",
		zap.String("recipe_id", r.RecipeID),
		zap.Int("ingredients", len(r.Ingredients)),
		zap.Int("steps", len(r.Instructions)),
		zap.Bool("cache_hit", resp.CacheHit),
	)
	return r, nil
}

// Get 依 ID 取得食譜
func (s *Service) Get(ctx context.Context, recipeID string) (*common.Recipe, error) {
	return s.repo.GetRecipe(ctx, recipeID)
}

// ListRecent 取得最近的食譜
func (s *Service) ListRecent(ctx context.Context, limit int) ([]common.Recipe, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.repo.ListRecentRecipes(ctx, limit)
}

// sanitizeRequest 清理使用者輸入，REST 路徑與聊天路徑一致
func sanitizeRequest(req common.RecipeRequest) common.RecipeRequest {
	out := common.RecipeRequest{
		Ingredients:         cleanList(req.Ingredients),
		Cuisine:             message.Sanitize(req.Cuisine),
		DietaryRestrictions: cleanList(req.DietaryRestrictions),
		CookingTime:         req.CookingTime,
	}
	if out.CookingTime < 0 {
		out.CookingTime = 0
	}
	return out
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if v := message.Sanitize(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}
