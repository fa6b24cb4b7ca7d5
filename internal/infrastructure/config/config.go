package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	WhatsApp    WhatsAppConfig   `mapstructure:"whatsapp"`
	Telegram    TelegramConfig   `mapstructure:"telegram"`
	AI          AIConfig         `mapstructure:"ai"`
	Gemini      GeminiConfig     `mapstructure:"gemini"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Payment     PaymentConfig    `mapstructure:"payment"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Session     SessionConfig    `mapstructure:"session"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Queue       QueueConfig      `mapstructure:"queue"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	Classifier  ClassifierConfig `mapstructure:"classifier"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error fatal"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" validate:"min=1024"`
}

// WhatsAppConfig WhatsApp Cloud API 設定
type WhatsAppConfig struct {
	AccessToken   string        `mapstructure:"access_token"`
	PhoneNumberID string        `mapstructure:"phone_number_id"`
	AppSecret     string        `mapstructure:"app_secret"`
	VerifyToken   string        `mapstructure:"verify_token"`
	APIVersion    string        `mapstructure:"api_version"`
	BaseURL       string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// Enabled 是否具備送出訊息所需的憑證
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

// TelegramConfig Telegram Bot API 設定
type TelegramConfig struct {
	BotToken      string        `mapstructure:"bot_token"`
	WebhookSecret string        `mapstructure:"webhook_secret"`
	ServerURL     string        `mapstructure:"server_url" validate:"omitempty,url"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// Enabled 是否設定 bot token
func (c TelegramConfig) Enabled() bool {
	return c.BotToken != ""
}

// AIConfig 食譜生成設定
type AIConfig struct {
	Provider string        `mapstructure:"provider" validate:"oneof=gemini openrouter"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// GeminiConfig Gemini 設定
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// OpenRouterConfig OpenRouter 設定
type OpenRouterConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
	BaseURL   string `mapstructure:"base_url" validate:"omitempty,url"`
}

// PaymentConfig Razorpay 與 UPI 設定
type PaymentConfig struct {
	KeyID               string        `mapstructure:"key_id"`
	KeySecret           string        `mapstructure:"key_secret"`
	WebhookSecret       string        `mapstructure:"webhook_secret"`
	BaseURL             string        `mapstructure:"base_url" validate:"omitempty,url"`
	UPIVPA              string        `mapstructure:"upi_vpa"`
	PayeeName           string        `mapstructure:"payee_name"`
	Amount              float64       `mapstructure:"amount" validate:"gt=0"`
	Currency            string        `mapstructure:"currency" validate:"len=3"`
	Description         string        `mapstructure:"description"`
	ReconcileInterval   time.Duration `mapstructure:"reconcile_interval"`
	ReconcileBatchLimit int           `mapstructure:"reconcile_batch_limit"`
	PremiumDays         int           `mapstructure:"premium_days" validate:"min=1"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// Enabled 是否具備 Razorpay 憑證
func (c PaymentConfig) Enabled() bool {
	return c.KeyID != "" && c.KeySecret != ""
}

// DatabaseConfig SQLite 設定
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// RedisConfig Redis 連線設定，Addr 為空時停用
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SessionConfig session 設定
type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// CacheConfig 食譜回應快取設定
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// QueueConfig 背景工作隊列設定
type QueueConfig struct {
	Workers    int           `mapstructure:"workers"`
	MaxSize    int           `mapstructure:"max_size"`
	JobTimeout time.Duration `mapstructure:"job_timeout"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ClassifierConfig 關鍵字比對設定
type ClassifierConfig struct {
	MatchMode string `mapstructure:"match_mode" validate:"oneof=word substring"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時直接使用環境變數
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnv(v)

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	// logger 尚未初始化，改用 fmt.Println
	fmt.Println("Loading configuration",
		"whatsapp_phone_number_id:", v.GetString("whatsapp.phone_number_id"),
		"telegram_bot_token:", MaskIfSet(v.GetString("telegram.bot_token")),
		"ai_provider:", v.GetString("ai.provider"),
	)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// bindEnv 綁定各平台慣用的環境變數名稱
func bindEnv(v *viper.Viper) {
	bindings := map[string]string{
		"whatsapp.access_token":         "WHATSAPP_ACCESS_TOKEN",
		"whatsapp.phone_number_id":      "WHATSAPP_PHONE_NUMBER_ID",
		"whatsapp.app_secret":           "WHATSAPP_APP_SECRET",
		"whatsapp.verify_token":         "WHATSAPP_VERIFY_TOKEN",
		"whatsapp.api_version":          "WHATSAPP_API_VERSION",
		"telegram.bot_token":            "TELEGRAM_BOT_TOKEN",
		"telegram.webhook_secret":       "TELEGRAM_WEBHOOK_SECRET",
		"ai.provider":                   "AI_PROVIDER",
		"gemini.api_key":                "GEMINI_API_KEY",
		"gemini.model":                  "GEMINI_MODEL",
		"openrouter.api_key":            "OPENROUTER_API_KEY",
		"openrouter.model":              "OPENROUTER_MODEL",
		"payment.key_id":                "RAZORPAY_KEY_ID",
		"payment.key_secret":            "RAZORPAY_KEY_SECRET",
		"payment.webhook_secret":        "RAZORPAY_WEBHOOK_SECRET",
		"payment.upi_vpa":               "UPI_VPA",
		"payment.amount":                "PAYMENT_AMOUNT",
		"payment.currency":              "PAYMENT_CURRENCY",
		"payment.description":           "PAYMENT_DESCRIPTION",
		"redis.addr":                    "REDIS_ADDR",
		"redis.password":                "REDIS_PASSWORD",
		"rate_limit.enabled":            "RATE_LIMIT_ENABLED",
		"rate_limit.requests":           "RATE_LIMIT_REQUESTS",
		"rate_limit.window":             "RATE_LIMIT_WINDOW",
		"classifier.match_mode":         "KEYWORD_MATCH_MODE",
		"dedup_window":                  "DEDUP_WINDOW",
		"log_level":                     "LOG_LEVEL",
		"server.port":                   "PORT",
		"payment.reconcile_interval":    "PAYMENT_RECONCILE_INTERVAL",
		"payment.reconcile_batch_limit": "PAYMENT_RECONCILE_BATCH_LIMIT",
		"payment.premium_days":          "PREMIUM_DAYS",
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}
	// DATABASE_URL 是路徑，沿用舊部署的變數名稱
	_ = v.BindEnv("database.path", "DATABASE_PATH", "DATABASE_URL")
}

// MaskIfSet 遮罩憑證，空值顯示為 <unset>
func MaskIfSet(s string) string {
	if s == "" {
		return "<unset>"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-bot")

	// 伺服器設定
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// WhatsApp 設定
	v.SetDefault("whatsapp.api_version", "v23.0")
	v.SetDefault("whatsapp.base_url", "https://graph.facebook.com")
	v.SetDefault("whatsapp.timeout", "10s")

	// Telegram 設定
	v.SetDefault("telegram.timeout", "10s")

	// AI 設定
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("gemini.model", "gemini-1.5-flash-latest")
	v.SetDefault("openrouter.model", "google/gemini-flash-1.5")
	v.SetDefault("openrouter.max_tokens", 1000)
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")

	// 付款設定
	v.SetDefault("payment.base_url", "https://api.razorpay.com/v1")
	v.SetDefault("payment.payee_name", "Recipe Bot")
	v.SetDefault("payment.amount", 100.0)
	v.SetDefault("payment.currency", "INR")
	v.SetDefault("payment.description", "Recipe Premium Access")
	v.SetDefault("payment.reconcile_interval", "5m")
	v.SetDefault("payment.reconcile_batch_limit", 50)
	v.SetDefault("payment.premium_days", 30)
	v.SetDefault("payment.timeout", "15s")

	// 儲存設定
	v.SetDefault("database.path", "recipes.db")
	v.SetDefault("redis.db", 0)
	v.SetDefault("session.ttl", "24h")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// 隊列設定
	v.SetDefault("queue.workers", 5)
	v.SetDefault("queue.max_size", 100)
	v.SetDefault("queue.job_timeout", "90s")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("classifier.match_mode", "word")
	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	// 驗證隊列設定
	if config.Queue.Workers <= 0 {
		return fmt.Errorf("invalid queue workers")
	}
	if config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue max size")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}

	if config.Payment.ReconcileInterval < 0 {
		return fmt.Errorf("invalid payment reconcile interval")
	}

	return nil
}
