// Package health serves liveness, readiness and the API index.
package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-bot/internal/core/queue"
	"recipe-bot/internal/pkg/common"
)

const serviceName = "food-recipe-bot"

// Pinger 可檢查連線的依賴
type Pinger interface {
	Ping(ctx context.Context) error
}

// QueueReporter 回報背景隊列狀態
type QueueReporter interface {
	GetQueueStatus() *queue.Status
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *queue.Status          `json:"queue,omitempty"`
}

// Handler 健康檢查處理器
type Handler struct {
	version      string
	queue        QueueReporter
	dependencies map[string]Pinger
	timeout      time.Duration
}

// NewHandler 創建處理器，dependencies 的每一項都會在 /ready 檢查
func NewHandler(version string, q QueueReporter, dependencies map[string]Pinger) *Handler {
	return &Handler{version: version, queue: q, dependencies: dependencies, timeout: 2 * time.Second}
}

// HealthCheck 健康檢查
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	resp := HealthResponse{
		Status:    "healthy",
		Service:   serviceName,
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.queue != nil {
		resp.Queue = h.queue.GetQueueStatus()
	}

	common.LogDebug("Health check request", zap.String("client_ip", c.ClientIP()))
	c.JSON(http.StatusOK, resp)
}

// ReadinessCheck 檢查所有依賴，任一失敗回 503
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	checks := make(map[string]string, len(h.dependencies))
	ready := true
	for name, dep := range h.dependencies {
		if err := dep.Ping(ctx); err != nil {
			common.LogWarn("Readiness check failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = "unavailable"
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Index API 端點列表
func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Food Recipe Bot API is running",
		"version": h.version,
		"endpoints": gin.H{
			"generate_recipe":   "POST /api/v1/recipes/generate",
			"get_recipe":        "GET /api/v1/recipes/{recipe_id}",
			"recent_recipes":    "GET /api/v1/recipes",
			"whatsapp_webhook":  "POST /api/v1/webhook/whatsapp",
			"telegram_webhook":  "POST /api/v1/webhook/telegram",
			"payment_endpoints": "Various /api/v1/payments/* endpoints",
			"metrics":           "GET /metrics",
		},
	})
}
