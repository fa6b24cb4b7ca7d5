package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"recipe-bot/internal/infrastructure/config"
	"recipe-bot/internal/pkg/common"
)

// Provider 付款供應商操作
type Provider interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*ProviderPayment, error)
	FetchOrderPayments(ctx context.Context, orderID string) ([]ProviderPayment, error)
}

// OrderRequest 建立訂單的參數，金額以元為單位
type OrderRequest struct {
	Amount        float64
	Currency      string
	Description   string
	CustomerPhone string
}

// Order Razorpay 訂單
type Order struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// ProviderPayment Razorpay 付款實體，金額以 paise 為單位
type ProviderPayment struct {
	ID           string                `json:"id"`
	OrderID      string                `json:"order_id"`
	Amount       int64                 `json:"amount"`
	Currency     string                `json:"currency"`
	Status       common.ProviderStatus `json:"status"`
	CreatedAt    int64                 `json:"created_at"`
	AcquirerData struct {
		RRN string `json:"rrn"`
	} `json:"acquirer_data"`
}

type orderBody struct {
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	PaymentCapture int               `json:"payment_capture"`
	Notes          map[string]string `json:"notes"`
}

type collection struct {
	Count int               `json:"count"`
	Items []ProviderPayment `json:"items"`
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// RazorpayClient Razorpay REST 客戶端
type RazorpayClient struct {
	client *resty.Client
}

var _ Provider = (*RazorpayClient)(nil)

// NewRazorpayClient 以 key id / secret 建立客戶端
func NewRazorpayClient(cfg config.PaymentConfig) (*RazorpayClient, error) {
	if !cfg.Enabled() {
		return nil, common.ErrConfiguration.Wrap(errors.New("razorpay credentials are required"))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &RazorpayClient{client: client}, nil
}

// ToPaise 元轉為 paise
func ToPaise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromPaise paise 轉為元
func FromPaise(paise int64) float64 {
	return float64(paise) / 100
}

// CreateOrder 建立自動 capture 的訂單
func (c *RazorpayClient) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	var order Order
	var apiErr apiError
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(orderBody{
			Amount:         ToPaise(req.Amount),
			Currency:       req.Currency,
			PaymentCapture: 1,
			Notes: map[string]string{
				"description":    req.Description,
				"customer_phone": req.CustomerPhone,
			},
		}).
		SetResult(&order).
		SetError(&apiErr).
		Post("/orders")
	if err := checkResponse(resp, err, &apiErr, "create order"); err != nil {
		return nil, err
	}
	if order.ID == "" {
		return nil, common.ErrPaymentProvider.Wrap(errors.New("create order: response has no order id"))
	}
	return &order, nil
}

// FetchPayment 取得付款
func (c *RazorpayClient) FetchPayment(ctx context.Context, paymentID string) (*ProviderPayment, error) {
	var p ProviderPayment
	var apiErr apiError
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", paymentID).
		SetResult(&p).
		SetError(&apiErr).
		Get("/payments/{id}")
	if err := checkResponse(resp, err, &apiErr, "fetch payment"); err != nil {
		return nil, err
	}
	return &p, nil
}

// FetchOrderPayments 取得訂單底下的所有付款嘗試
func (c *RazorpayClient) FetchOrderPayments(ctx context.Context, orderID string) ([]ProviderPayment, error) {
	var result collection
	var apiErr apiError
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", orderID).
		SetResult(&result).
		SetError(&apiErr).
		Get("/orders/{id}/payments")
	if err := checkResponse(resp, err, &apiErr, "fetch order payments"); err != nil {
		return nil, err
	}
	return result.Items, nil
}

func checkResponse(resp *resty.Response, err error, apiErr *apiError, op string) error {
	if err != nil {
		return common.ErrPaymentProvider.Wrap(fmt.Errorf("%s: %w", op, err))
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return common.ErrNotFound.Wrap(fmt.Errorf("%s: %s", op, apiErr.Error.Description))
	case resp.IsError():
		desc := apiErr.Error.Description
		if desc == "" {
			desc = resp.String()
		}
		return common.ErrPaymentProvider.Wrap(fmt.Errorf("%s: status %d: %s", op, resp.StatusCode(), desc))
	}
	return nil
}
