package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"recipe-bot/internal/api/handlers/health"
	"recipe-bot/internal/api/handlers/payment"
	"recipe-bot/internal/api/handlers/recipe"
	"recipe-bot/internal/api/handlers/webhook"
	"recipe-bot/internal/api/middleware"
	"recipe-bot/internal/infrastructure/config"
	"recipe-bot/internal/pkg/common"
)

// REST 請求超時，webhook 不受限制，背景工作自行控制
const timeoutDuration = 120 * time.Second

// Handlers 路由所需的處理器
type Handlers struct {
	Health       *health.Handler
	Recipes      *recipe.Handler
	Payments     *payment.Handler
	WhatsApp     *webhook.WhatsAppHandler
	Telegram     *webhook.TelegramHandler
	Deduplicator *middleware.Deduplicator
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// requestid 需先於 Logger 才能記錄請求 ID
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	router.GET("/health", h.Health.HealthCheck)
	router.GET("/ready", h.Health.ReadinessCheck)
	router.GET("/live", h.Health.LivenessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.GET("", h.Health.Index)
	api.GET("/health", h.Health.HealthCheck)

	// 平台 webhook 同時掛在根路徑與 /api/v1 之下
	for _, group := range []*gin.RouterGroup{router.Group("/webhook"), api.Group("/webhook")} {
		registerWebhooks(group, h)
	}

	rest := api.Group("")
	rest.Use(timeout(timeoutDuration))
	if cfg.RateLimit.Enabled {
		rest.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	recipes := rest.Group("/recipes")
	if h.Deduplicator != nil {
		recipes.Use(h.Deduplicator.Middleware())
	}
	{
		recipes.POST("/generate", h.Recipes.Generate)
		recipes.GET("", h.Recipes.List)
		recipes.GET("/:id", h.Recipes.Get)
	}

	payments := rest.Group("/payments")
	{
		payments.POST("/create", h.Payments.Create)
		payments.GET("/status/:id", h.Payments.Status)
		// Razorpay 會重送相同事件，不套用去重
		payments.POST("/webhook/razorpay", h.Payments.RazorpayWebhook)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Bool("whatsapp_enabled", cfg.WhatsApp.Enabled()),
		zap.Bool("telegram_enabled", cfg.Telegram.Enabled()),
		zap.Bool("payments_enabled", cfg.Payment.Enabled()),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}

func registerWebhooks(group *gin.RouterGroup, h Handlers) {
	wa := group.Group("/whatsapp")
	{
		wa.GET("", h.WhatsApp.Verify)
		wa.POST("", h.WhatsApp.Receive)
		wa.GET("/info", h.WhatsApp.Info)
		wa.GET("/test", h.WhatsApp.Test)
	}

	tg := group.Group("/telegram")
	{
		tg.POST("", h.Telegram.Receive)
		tg.GET("/setup", h.Telegram.Setup)
		tg.GET("/info", h.Telegram.Info)
		tg.GET("/remove", h.Telegram.Remove)
	}
}

// timeout 為請求設定 deadline，逾時後回 504
func timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", d),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{
				"code":    "REQUEST_TIMEOUT",
				"message": "Request timeout",
				"details": gin.H{"timeout": d.String()},
			})
		}
	}
}
