package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"recipe-bot/internal/api"
	"recipe-bot/internal/api/handlers"
	"recipe-bot/internal/api/handlers/health"
	paymentHandler "recipe-bot/internal/api/handlers/payment"
	recipeHandler "recipe-bot/internal/api/handlers/recipe"
	"recipe-bot/internal/api/handlers/webhook"
	"recipe-bot/internal/api/middleware"
	"recipe-bot/internal/core/ai/cache"
	"recipe-bot/internal/core/ai/gemini"
	"recipe-bot/internal/core/ai/openrouter"
	"recipe-bot/internal/core/ai/provider"
	"recipe-bot/internal/core/ai/service"
	"recipe-bot/internal/core/format"
	"recipe-bot/internal/core/jobs"
	"recipe-bot/internal/core/message"
	"recipe-bot/internal/core/payment"
	"recipe-bot/internal/core/queue"
	"recipe-bot/internal/core/recipe"
	"recipe-bot/internal/core/routing"
	"recipe-bot/internal/infrastructure/config"
	"recipe-bot/internal/infrastructure/messaging"
	"recipe-bot/internal/infrastructure/session"
	"recipe-bot/internal/infrastructure/store"
	"recipe-bot/internal/pkg/common"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	handlers.Debug = cfg.App.Debug

	if err := run(cfg); err != nil {
		common.LogError("Application stopped with error", zap.Error(err))
		common.Sync()
		os.Exit(1)
	}
	common.LogInfo("Server exited")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	common.LogInfo("載入設定",
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("gemini_key", common.MaskSecret(cfg.Gemini.APIKey)),
		zap.String("openrouter_key", common.MaskSecret(cfg.OpenRouter.APIKey)),
		zap.Bool("whatsapp_enabled", cfg.WhatsApp.Enabled()),
		zap.Bool("telegram_enabled", cfg.Telegram.Enabled()),
		zap.Bool("payments_enabled", cfg.Payment.Enabled()),
		zap.Bool("redis_enabled", cfg.Redis.Addr != ""),
	)

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	repo := store.New(db)
	defer func() {
		if err := repo.Close(); err != nil {
			common.LogError("Failed to close database", zap.Error(err))
		}
	}()

	dependencies := map[string]health.Pinger{"database": repo}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = session.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		common.LogInfo("Redis connected", zap.String("addr", cfg.Redis.Addr))
	}
	sessions := session.New(redisClient, cfg.Session.TTL)
	if redisClient != nil {
		dependencies["redis"] = sessions
	}

	// 回應快取：有 Redis 時共用，否則使用記憶體快取
	var responseCache cache.Cache
	if cfg.Cache.Enabled {
		if redisClient != nil {
			responseCache = cache.NewRedisCache(redisClient, cfg.Cache.TTL)
		} else {
			manager := cache.NewManager(cfg.Cache)
			defer func() {
				common.LogInfo("Cache stats", zap.Any("stats", manager.GetStats()))
				_ = manager.Close()
			}()
			responseCache = manager
		}
	}

	backend, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	recipes := recipe.NewService(service.NewService(backend, responseCache, cfg.AI.Timeout), repo)

	// 平台客戶端，未設定的平台保持 nil interface
	registry := messaging.Registry{}
	var (
		waClient webhook.WhatsAppClient
		tgClient webhook.TelegramClient
		waSender messaging.Messenger
	)
	if cfg.WhatsApp.Enabled() {
		c, err := messaging.NewWhatsAppClient(cfg.WhatsApp)
		if err != nil {
			return err
		}
		waClient, waSender = c, c
		registry[message.PlatformWhatsApp] = c
	}
	if cfg.Telegram.Enabled() {
		c, err := messaging.NewTelegramClient(cfg.Telegram)
		if err != nil {
			return err
		}
		tgClient = c
		registry[message.PlatformTelegram] = c
	}

	queueManager := queue.NewManager(cfg.Queue)
	opts := []jobs.Option{jobs.WithSessions(sessions), jobs.WithUsers(repo)}

	var (
		payments   paymentHandler.Service
		reconciler *payment.Reconciler
	)
	if cfg.Payment.Enabled() {
		razorpay, err := payment.NewRazorpayClient(cfg.Payment)
		if err != nil {
			return err
		}
		paymentService := payment.NewService(razorpay, repo, cfg.Payment,
			payment.WithNotifier(jobs.NewPaymentNotifier(waSender)))
		payments = paymentService
		opts = append(opts, jobs.WithPayments(paymentService))

		if cfg.Payment.ReconcileInterval > 0 {
			reconciler, err = payment.NewReconciler(paymentService, cfg.Payment.ReconcileInterval)
			if err != nil {
				return err
			}
		}
	}
	executor := jobs.NewExecutor(queueManager, registry, recipes, opts...)

	classifier := message.NewClassifier(message.MatchMode(cfg.Classifier.MatchMode), nil)
	common.LogDebug("Classifier ready", zap.String("match_mode", string(classifier.Mode())))
	dedup := middleware.NewDeduplicator(cfg.DedupWindow)
	defer dedup.Close()

	router := api.SetupRouter(cfg, api.Handlers{
		Health:   health.NewHandler(cfg.App.Version, queueManager, dependencies),
		Recipes:  recipeHandler.NewHandler(recipes),
		Payments: paymentHandler.NewHandler(payments),
		WhatsApp: webhook.NewWhatsAppHandler(cfg.WhatsApp, waClient,
			message.NewWhatsAppNormalizer(classifier),
			routing.NewRouter(format.WhatsAppMessages(), routing.WithSessionContext(sessions)),
			executor),
		Telegram: webhook.NewTelegramHandler(cfg.Telegram, tgClient,
			message.NewTelegramNormalizer(),
			routing.NewRouter(format.TelegramMessages(), routing.WithSessionContext(sessions)),
			executor),
		Deduplicator: dedup,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if reconciler != nil {
		if err := reconciler.Start(); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		common.LogInfo("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server forced to shutdown: %w", err))
		}
		if reconciler != nil {
			if err := reconciler.Stop(); err != nil {
				errs = append(errs, err)
			}
		}
		// 等待執行中的食譜與付款工作送出回覆
		if err := queueManager.Close(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// newProvider 依設定建立食譜生成後端
func newProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	if cfg.AI.Provider == "openrouter" {
		client, err := openrouter.NewClient(cfg.OpenRouter, cfg.AI.Timeout)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	client, err := gemini.NewClient(ctx, cfg.Gemini, gemini.Options{})
	if err != nil {
		return nil, err
	}
	return client, nil
}
