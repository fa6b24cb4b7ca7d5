// Package payment exposes UPI checkout, status and the Razorpay webhook over REST.
package payment

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-bot/internal/api/handlers"
	corepayment "recipe-bot/internal/core/payment"
	"recipe-bot/internal/pkg/common"
)

// Service 付款服務
type Service interface {
	CreateUPIPayment(ctx context.Context, amount float64, description, phone string) (*corepayment.Checkout, error)
	VerifyPayment(ctx context.Context, id string) (*corepayment.StatusResult, error)
	HandleWebhook(ctx context.Context, body []byte, sig string) (*corepayment.WebhookResult, error)
}

// CreateRequest 建立付款請求
type CreateRequest struct {
	Amount        float64 `json:"amount" binding:"omitempty,gt=0"`
	Description   string  `json:"description"`
	CustomerPhone string  `json:"customer_phone" binding:"required"`
}

// Handler 付款處理程序
type Handler struct {
	service Service
}

// NewHandler 創建付款處理程序，service 為 nil 時所有端點回 501
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) configured(c *gin.Context) bool {
	if h.service == nil {
		handlers.Error(c, common.ErrConfiguration)
		return false
	}
	return true
}

// Create 建立 UPI 付款
func (h *Handler) Create(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, "Invalid request format")
		return
	}

	checkout, err := h.service.CreateUPIPayment(c.Request.Context(), req.Amount, req.Description, req.CustomerPhone)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, checkout)
}

// Status 向供應商確認付款狀態
func (h *Handler) Status(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	res, err := h.service.VerifyPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// RazorpayWebhook 處理 Razorpay 事件
func (h *Handler) RazorpayWebhook(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		handlers.BadRequest(c, "Failed to read request body")
		return
	}

	res, err := h.service.HandleWebhook(c.Request.Context(), body, c.GetHeader("X-Razorpay-Signature"))
	if err != nil {
		handlers.Error(c, err)
		return
	}

	common.LogInfo("Razorpay webhook processed",
		zap.String("event", res.Event),
		zap.String("payment_id", res.PaymentID),
		zap.Bool("handled", res.Handled),
	)
	c.JSON(http.StatusOK, gin.H{"status": "success", "event": res.Event, "handled": res.Handled})
}
