// Package payment creates UPI payment requests through Razorpay and tracks their status.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"recipe-bot/internal/infrastructure/config"
	"recipe-bot/internal/metrics"
	"recipe-bot/internal/pkg/common"
	"recipe-bot/internal/pkg/signature"
)

// HistoryLimit 付款紀錄訊息顯示的筆數
const HistoryLimit = 5

// Repository 付款與會員資料存取
type Repository interface {
	SavePayment(ctx context.Context, p *common.Payment) error
	GetPayment(ctx context.Context, paymentID string) (*common.Payment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID string, provider common.ProviderStatus, upiReference string) (bool, error)
	ListPaymentsByPhone(ctx context.Context, phone string, limit int) ([]common.Payment, error)
	ListPendingPayments(ctx context.Context, limit int) ([]common.Payment, error)
	GetUser(ctx context.Context, phone string) (*common.User, error)
	MarkPremium(ctx context.Context, phone string, until time.Time) error
}

// Notifier 付款成功時通知使用者
type Notifier interface {
	PaymentConfirmed(ctx context.Context, p *common.Payment) error
}

// Checkout 建立付款的結果
type Checkout struct {
	PaymentID string  `json:"payment_id"`
	Status    string  `json:"status"`
	UPILink   string  `json:"upi_link"`
	QRCode    string  `json:"qr_code"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	QRPNG     []byte  `json:"-"`
}

// StatusResult 向供應商確認後的付款狀態
type StatusResult struct {
	PaymentID     string                `json:"payment_id"`
	Status        common.ProviderStatus `json:"status"`
	PaymentStatus common.PaymentStatus  `json:"payment_status"`
	Amount        float64               `json:"amount"`
	Currency      string                `json:"currency"`
	Timestamp     int64                 `json:"timestamp"`
	UPIReference  string                `json:"upi_reference,omitempty"`
}

// Service 付款服務
type Service struct {
	provider Provider
	repo     Repository
	cfg      config.PaymentConfig
	notifier Notifier
	now      func() time.Time
}

// Option 服務選項
type Option func(*Service)

// WithNotifier 設定付款成功通知
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// NewService 創建付款服務
func NewService(provider Provider, repo Repository, cfg config.PaymentConfig, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		repo:     repo,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config 付款設定
func (s *Service) Config() config.PaymentConfig { return s.cfg }

// CreateUPIPayment 建立訂單、UPI 連結與 QR code，並以 pending 狀態存檔
func (s *Service) CreateUPIPayment(ctx context.Context, amount float64, description, phone string) (*Checkout, error) {
	if amount <= 0 {
		amount = s.cfg.Amount
	}
	if description == "" {
		description = s.cfg.Description
	}

	order, err := s.provider.CreateOrder(ctx, OrderRequest{
		Amount:        amount,
		Currency:      s.cfg.Currency,
		Description:   description,
		CustomerPhone: phone,
	})
	if err != nil {
		return nil, err
	}

	link := UPILink{
		VPA:       s.cfg.UPIVPA,
		PayeeName: s.cfg.PayeeName,
		Amount:    amount,
		Note:      description,
		Currency:  s.cfg.Currency,
		Reference: order.ID,
	}.String()

	png, dataURL, err := GenerateQRCode(link)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SavePayment(ctx, &common.Payment{
		PaymentID:      order.ID,
		Amount:         amount,
		Currency:       s.cfg.Currency,
		CustomerPhone:  phone,
		Status:         common.PaymentPending,
		ProviderStatus: common.ProviderCreated,
		Description:    description,
	}); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}
	metrics.RecordPayment(string(common.PaymentPending))

	common.LogInfo("Payment created",
		zap.String("payment_id", order.ID),
		zap.Float64("amount", amount),
		zap.String("currency", s.cfg.Currency),
	)

	return &Checkout{
		PaymentID: order.ID,
		Status:    string(common.ProviderCreated),
		UPILink:   link,
		QRCode:    dataURL,
		Amount:    amount,
		Currency:  s.cfg.Currency,
		QRPNG:     png,
	}, nil
}

// VerifyPayment 向供應商查詢狀態並更新存檔。
// order_ 開頭的 ID 會查詢訂單底下的付款，其餘視為付款 ID。
func (s *Service) VerifyPayment(ctx context.Context, id string) (*StatusResult, error) {
	if strings.HasPrefix(id, "order_") {
		return s.verifyOrder(ctx, id)
	}

	p, err := s.provider.FetchPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	orderID := p.OrderID
	if orderID == "" {
		orderID = p.ID
	}
	if _, err := s.apply(ctx, orderID, p.Status, p.AcquirerData.RRN); err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	return resultFrom(id, p), nil
}

func (s *Service) verifyOrder(ctx context.Context, orderID string) (*StatusResult, error) {
	items, err := s.provider.FetchOrderPayments(ctx, orderID)
	if err != nil {
		return nil, err
	}

	p := pickPayment(items)
	if p == nil {
		// 尚未有付款嘗試，回報存檔中的狀態
		stored, err := s.repo.GetPayment(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return &StatusResult{
			PaymentID:     orderID,
			Status:        common.ProviderCreated,
			PaymentStatus: stored.Status,
			Amount:        stored.Amount,
			Currency:      stored.Currency,
			Timestamp:     stored.CreatedAt.Unix(),
		}, nil
	}

	if _, err := s.apply(ctx, orderID, p.Status, p.AcquirerData.RRN); err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	return resultFrom(orderID, p), nil
}

// pickPayment 優先取 captured，其次 authorized，否則取最新的一筆
func pickPayment(items []ProviderPayment) *ProviderPayment {
	var best *ProviderPayment
	rank := func(p *ProviderPayment) int {
		switch p.Status {
		case common.ProviderCaptured:
			return 2
		case common.ProviderAuthorized:
			return 1
		default:
			return 0
		}
	}
	for i := range items {
		p := &items[i]
		if best == nil || rank(p) > rank(best) || (rank(p) == rank(best) && p.CreatedAt > best.CreatedAt) {
			best = p
		}
	}
	return best
}

func resultFrom(id string, p *ProviderPayment) *StatusResult {
	return &StatusResult{
		PaymentID:     id,
		Status:        p.Status,
		PaymentStatus: p.Status.Translate(),
		Amount:        FromPaise(p.Amount),
		Currency:      p.Currency,
		Timestamp:     p.CreatedAt,
		UPIReference:  p.AcquirerData.RRN,
	}
}

// apply 寫入供應商狀態，首次轉為 success 時升級會員並通知使用者
func (s *Service) apply(ctx context.Context, orderID string, status common.ProviderStatus, rrn string) (bool, error) {
	before, err := s.repo.GetPayment(ctx, orderID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			common.LogWarn("Provider reported unknown payment", zap.String("payment_id", orderID))
		}
		return false, err
	}

	if before.ProviderStatus == status && (rrn == "" || rrn == before.UPIReference) {
		return false, nil
	}
	promoted, err := s.repo.UpdatePaymentStatus(ctx, orderID, status, rrn)
	if err != nil {
		return false, err
	}

	next := status.Translate()
	metrics.RecordPayment(string(next))
	common.LogInfo("Payment status updated",
		zap.String("payment_id", orderID),
		zap.String("provider_status", string(status)),
		zap.String("status", string(next)),
	)

	// 並行的驗證與 webhook 只有一方會拿到 promoted
	if !promoted {
		return true, nil
	}

	until := s.now().AddDate(0, 0, s.cfg.PremiumDays)
	if err := s.repo.MarkPremium(ctx, before.CustomerPhone, until); err != nil {
		return true, fmt.Errorf("failed to mark premium: %w", err)
	}

	if s.notifier != nil {
		after := *before
		after.Status = next
		after.ProviderStatus = status
		if rrn != "" {
			after.UPIReference = rrn
		}
		if err := s.notifier.PaymentConfirmed(ctx, &after); err != nil {
			common.LogWarn("Failed to notify payment success", zap.String("payment_id", orderID), zap.Error(err))
		}
	}
	return true, nil
}

// WebhookEvent Razorpay webhook 內容
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity ProviderPayment `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// WebhookResult webhook 處理結果
type WebhookResult struct {
	Event     string `json:"event"`
	PaymentID string `json:"payment_id,omitempty"`
	Handled   bool   `json:"handled"`
}

// HandleWebhook 驗證簽章並處理 payment.captured / payment.failed
func (s *Service) HandleWebhook(ctx context.Context, body []byte, sig string) (*WebhookResult, error) {
	if s.cfg.WebhookSecret != "" && !signature.VerifyHex(s.cfg.WebhookSecret, body, sig) {
		return nil, common.ErrInvalidSignature
	}

	var event WebhookEvent
	if err := common.ParseJSONBytes(body, &event); err != nil {
		return nil, common.ErrMalformedPayload.Wrap(err)
	}

	entity := event.Payload.Payment.Entity
	result := &WebhookResult{Event: event.Event, PaymentID: entity.OrderID}

	var status common.ProviderStatus
	switch event.Event {
	case "payment.captured":
		status = common.ProviderCaptured
	case "payment.failed":
		status = common.ProviderFailed
	default:
		return result, nil
	}

	if entity.OrderID == "" {
		return nil, common.ErrMalformedPayload.Wrap(errors.New("payment entity has no order_id"))
	}

	if _, err := s.apply(ctx, entity.OrderID, status, entity.AcquirerData.RRN); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return result, nil
		}
		return nil, err
	}
	result.Handled = true
	return result, nil
}

// History 使用者最近的付款紀錄
func (s *Service) History(ctx context.Context, phone string) ([]common.Payment, error) {
	return s.repo.ListPaymentsByPhone(ctx, phone, HistoryLimit)
}

// Account 使用者帳號資訊，不存在時回傳 common.ErrNotFound
func (s *Service) Account(ctx context.Context, phone string) (*common.User, error) {
	return s.repo.GetUser(ctx, phone)
}

// Reconcile 逐筆確認 pending 付款，回傳狀態有變動的筆數
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	limit := s.cfg.ReconcileBatchLimit
	if limit <= 0 {
		limit = 50
	}

	pending, err := s.repo.ListPendingPayments(ctx, limit)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, p := range pending {
		if ctx.Err() != nil {
			return changed, ctx.Err()
		}
		before := p.ProviderStatus
		res, err := s.VerifyPayment(ctx, p.PaymentID)
		if err != nil {
			common.LogWarn("Failed to reconcile payment", zap.String("payment_id", p.PaymentID), zap.Error(err))
			continue
		}
		if res.Status != before {
			changed++
		}
	}
	return changed, nil
}
