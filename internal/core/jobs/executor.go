// Package jobs carries out deferred webhook actions and replies to the sender.
package jobs

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"recipe-bot/internal/core/format"
	"recipe-bot/internal/core/message"
	"recipe-bot/internal/core/payment"
	"recipe-bot/internal/core/queue"
	"recipe-bot/internal/core/routing"
	"recipe-bot/internal/infrastructure/config"
	"recipe-bot/internal/infrastructure/messaging"
	"recipe-bot/internal/metrics"
	"recipe-bot/internal/pkg/common"
)

const (
	historyErrorText = "Sorry, I couldn't retrieve your payment status. Please try again later."
	accountErrorText = "Sorry, I couldn't retrieve your account information. Please try again later."
)

// RecipeGenerator 產生並存檔食譜
type RecipeGenerator interface {
	Generate(ctx context.Context, req common.RecipeRequest) (*common.Recipe, error)
}

// Payments 付款相關操作
type Payments interface {
	CreateUPIPayment(ctx context.Context, amount float64, description, phone string) (*payment.Checkout, error)
	History(ctx context.Context, phone string) ([]common.Payment, error)
	Account(ctx context.Context, phone string) (*common.User, error)
	Config() config.PaymentConfig
}

// SessionWriter 記錄使用者最後一筆食譜
type SessionWriter interface {
	SetLastRecipeID(ctx context.Context, platform message.Platform, sender, recipeID string) error
}

// UserRepository 首次使用時建立使用者
type UserRepository interface {
	EnsureUser(ctx context.Context, u *common.User) (bool, error)
}

// Submitter 背景工作隊列
type Submitter interface {
	Submit(job queue.Job) error
}

// Executor 執行 routing.Deferred
type Executor struct {
	messengers messaging.Registry
	recipes    RecipeGenerator
	payments   Payments
	sessions   SessionWriter
	users      UserRepository
	queue      Submitter
}

// Option 執行器選項
type Option func(*Executor)

// WithPayments 啟用付款相關工作
func WithPayments(p Payments) Option { return func(e *Executor) { e.payments = p } }

// WithSessions 啟用最後食譜記錄
func WithSessions(s SessionWriter) Option { return func(e *Executor) { e.sessions = s } }

// WithUsers 啟用使用者自動建立
func WithUsers(u UserRepository) Option { return func(e *Executor) { e.users = u } }

// NewExecutor 創建執行器
func NewExecutor(q Submitter, messengers messaging.Registry, recipes RecipeGenerator, opts ...Option) *Executor {
	e := &Executor{queue: q, messengers: messengers, recipes: recipes}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dispatch 將工作送入背景隊列，webhook 不等待結果
func (e *Executor) Dispatch(d routing.Deferred) error {
	if _, ok := e.messengers.For(d.Platform); !ok {
		return common.ErrConfiguration.Wrap(fmt.Errorf("no messenger for %s", d.Platform))
	}
	return e.queue.Submit(queue.Job{
		Name: string(d.Job),
		Run:  func(ctx context.Context) error { return e.Run(ctx, d) },
	})
}

// Run 同步執行工作，失敗時已通知使用者並回傳原始錯誤
func (e *Executor) Run(ctx context.Context, d routing.Deferred) error {
	m, ok := e.messengers.For(d.Platform)
	if !ok {
		return common.ErrConfiguration.Wrap(fmt.Errorf("no messenger for %s", d.Platform))
	}

	var err error
	switch d.Job {
	case routing.JobGenerateRecipe:
		err = e.generateRecipe(ctx, m, d)
	case routing.JobCreatePayment:
		err = e.createPayment(ctx, m, d)
	case routing.JobFetchPaymentHistory:
		err = e.paymentHistory(ctx, m, d)
	case routing.JobFetchAccount:
		err = e.account(ctx, m, d)
	default:
		err = fmt.Errorf("unknown job %q", d.Job)
	}

	metrics.RecordJob(string(d.Job), err)
	if err != nil {
		common.LogError("Deferred job failed",
			zap.String("job", string(d.Job)),
			zap.String("platform", string(d.Platform)),
			zap.Error(err),
		)
	}
	return err
}

func messagesFor(p message.Platform) (format.Messages, format.Formatter) {
	if p == message.PlatformTelegram {
		return format.TelegramMessages(), format.Telegram{}
	}
	return format.WhatsAppMessages(), format.WhatsApp{}
}

func (e *Executor) generateRecipe(ctx context.Context, m messaging.Messenger, d routing.Deferred) error {
	msgs, formatter := messagesFor(d.Platform)
	if d.Args == nil {
		return e.fail(ctx, m, d.Sender, msgs.Error, common.NewValidationError("recipe job without arguments"))
	}

	if err := m.SendText(ctx, d.Sender, msgs.Processing); err != nil {
		common.LogWarn("Failed to send processing message", zap.Error(err))
	}

	recipe, err := e.recipes.Generate(ctx, *d.Args)
	if err != nil {
		return e.fail(ctx, m, d.Sender, msgs.Error, err)
	}
	if err := m.SendText(ctx, d.Sender, formatter.Recipe(recipe)); err != nil {
		// 例如 Telegram 拒絕無法解析的 Markdown，改送錯誤訊息
		return e.fail(ctx, m, d.Sender, msgs.Error, fmt.Errorf("send recipe: %w", err))
	}

	if e.sessions != nil {
		if err := e.sessions.SetLastRecipeID(ctx, d.Platform, d.Sender, recipe.RecipeID); err != nil {
			common.LogWarn("Failed to store last recipe", zap.Error(err))
		}
	}
	if e.users != nil && d.Platform == message.PlatformWhatsApp {
		created, err := e.users.EnsureUser(ctx, &common.User{PhoneNumber: d.Sender})
		if err != nil {
			common.LogWarn("Failed to ensure user", zap.Error(err))
		} else if created {
			common.LogInfo("User created", zap.String("recipe_id", recipe.RecipeID))
		}
	}
	return nil
}

func (e *Executor) createPayment(ctx context.Context, m messaging.Messenger, d routing.Deferred) error {
	msgs, _ := messagesFor(d.Platform)
	if e.payments == nil {
		return e.fail(ctx, m, d.Sender, msgs.PaymentFailed, common.ErrConfiguration.Wrap(errors.New("payments are not configured")))
	}

	if err := m.SendText(ctx, d.Sender, msgs.PaymentProcessing); err != nil {
		common.LogWarn("Failed to send payment processing message", zap.Error(err))
	}

	cfg := e.payments.Config()
	checkout, err := e.payments.CreateUPIPayment(ctx, cfg.Amount, cfg.Description, d.Sender)
	if err != nil {
		return e.fail(ctx, m, d.Sender, msgs.PaymentFailed, err)
	}

	instructions := format.PaymentInstructions(checkout.UPILink, checkout.PaymentID, checkout.Amount, cfg.UPIVPA)
	if err := m.SendText(ctx, d.Sender, instructions); err != nil {
		return e.fail(ctx, m, d.Sender, msgs.PaymentFailed, err)
	}

	if len(checkout.QRPNG) == 0 {
		return nil
	}
	if err := m.SendText(ctx, d.Sender, msgs.PaymentQRCaption); err != nil {
		common.LogWarn("Failed to send QR caption", zap.Error(err))
	}
	if err := m.SendImage(ctx, d.Sender, checkout.QRPNG, ""); err != nil {
		// 說明訊息已含連結，QR 圖片失敗不算整體失敗
		common.LogWarn("Failed to send payment QR code",
			zap.String("payment_id", checkout.PaymentID),
			zap.Error(err),
		)
	}
	return nil
}

func (e *Executor) paymentHistory(ctx context.Context, m messaging.Messenger, d routing.Deferred) error {
	if e.payments == nil {
		return e.fail(ctx, m, d.Sender, historyErrorText, common.ErrConfiguration.Wrap(errors.New("payments are not configured")))
	}
	payments, err := e.payments.History(ctx, d.Sender)
	if err != nil {
		return e.fail(ctx, m, d.Sender, historyErrorText, err)
	}
	return m.SendText(ctx, d.Sender, format.PaymentHistory(payments))
}

func (e *Executor) account(ctx context.Context, m messaging.Messenger, d routing.Deferred) error {
	if e.payments == nil {
		return e.fail(ctx, m, d.Sender, accountErrorText, common.ErrConfiguration.Wrap(errors.New("payments are not configured")))
	}
	user, err := e.payments.Account(ctx, d.Sender)
	if errors.Is(err, common.ErrNotFound) {
		user, err = nil, nil
	}
	if err != nil {
		return e.fail(ctx, m, d.Sender, accountErrorText, err)
	}
	return m.SendText(ctx, d.Sender, format.AccountInfo(user))
}

// fail 通知使用者後回傳原始錯誤
func (e *Executor) fail(ctx context.Context, m messaging.Messenger, to, text string, cause error) error {
	if err := m.SendText(ctx, to, text); err != nil {
		common.LogError("Failed to send error message", zap.Error(err))
	}
	return cause
}
