// Package recipe exposes recipe generation and lookup over REST.
package recipe

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-bot/internal/api/handlers"
	"recipe-bot/internal/pkg/common"
)

// Service 食譜服務
type Service interface {
	Generate(ctx context.Context, req common.RecipeRequest) (*common.Recipe, error)
	Get(ctx context.Context, recipeID string) (*common.Recipe, error)
	ListRecent(ctx context.Context, limit int) ([]common.Recipe, error)
}

// ListResponse 最近食譜列表
type ListResponse struct {
	Recipes []common.Recipe `json:"recipes"`
	Count   int             `json:"count"`
}

// Handler 食譜處理程序
type Handler struct {
	service Service
}

// NewHandler 創建新的食譜處理程序
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Generate 依食材生成食譜
func (h *Handler) Generate(c *gin.Context) {
	reqID := requestid.Get(c)

	var req common.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效", zap.Error(err), zap.String("request_id", reqID))
		handlers.BadRequest(c, "Invalid request format")
		return
	}

	common.LogInfo("開始處理食譜生成請求",
		zap.String("request_id", reqID),
		zap.Int("ingredients", len(req.Ingredients)),
	)

	recipe, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		handlers.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// Get 依 ID 取得食譜
func (h *Handler) Get(c *gin.Context) {
	recipe, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// List 取得最近的食譜
func (h *Handler) List(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			handlers.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	recipes, err := h.service.ListRecent(c.Request.Context(), limit)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Recipes: recipes, Count: len(recipes)})
}
