package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 返回原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，讓 errors.Is 可以對預定義錯誤生效
func (e *CustomError) Is(target error) bool {
	var t *CustomError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Wrap 以相同代碼與狀態包裝原始錯誤
func (e *CustomError) Wrap(err error) *CustomError {
	return NewError(e.Code, e.Message, e.Status, err)
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ToResponse 轉為 API 錯誤響應，debug 模式才帶出原始錯誤
func (e *CustomError) ToResponse(debug bool) ErrorResponse {
	resp := ErrorResponse{Code: e.Code, Message: e.Message}
	if debug && e.Err != nil {
		resp.Details = e.Err.Error()
	}
	return resp
}

// StatusOf 取得錯誤對應的 HTTP 狀態碼，非 CustomError 一律 500
func StatusOf(err error) int {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Status != 0 {
		return ce.Status
	}
	return http.StatusInternalServerError
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest     = "INVALID_REQUEST"     // 400
	ErrCodeMalformedPayload   = "MALFORMED_PAYLOAD"   // 400
	ErrCodeUnauthorized       = "UNAUTHORIZED"        // 401
	ErrCodeInvalidSignature   = "INVALID_SIGNATURE"   // 401
	ErrCodeForbidden          = "FORBIDDEN"           // 403
	ErrCodeVerificationFailed = "VERIFICATION_FAILED" // 403
	ErrCodeNotFound           = "NOT_FOUND"           // 404
	ErrCodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"   // 413
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"   // 429
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"       // 400

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeNotImplemented     = "NOT_IMPLEMENTED"     // 501
	ErrCodeConfiguration      = "NOT_CONFIGURED"      // 501
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503

	// 業務錯誤
	ErrCodeEmptyUpstream   = "EMPTY_UPSTREAM_RESPONSE"
	ErrCodeRecipeParse     = "RECIPE_PARSE_FAILED"
	ErrCodeBackendFailure  = "BACKEND_FAILURE"
	ErrCodePaymentProvider = "PAYMENT_PROVIDER_ERROR"
	ErrCodeMessaging       = "MESSAGING_ERROR"
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest     = NewError(ErrCodeInvalidRequest, "Invalid request", http.StatusBadRequest, nil)
	ErrMalformedPayload   = NewError(ErrCodeMalformedPayload, "Malformed JSON payload", http.StatusBadRequest, nil)
	ErrUnauthorized       = NewError(ErrCodeUnauthorized, "Unauthorized", http.StatusUnauthorized, nil)
	ErrInvalidSignature   = NewError(ErrCodeInvalidSignature, "Invalid webhook signature", http.StatusUnauthorized, nil)
	ErrForbidden          = NewError(ErrCodeForbidden, "Forbidden", http.StatusForbidden, nil)
	ErrVerificationFailed = NewError(ErrCodeVerificationFailed, "Verification failed", http.StatusForbidden, nil)
	ErrNotFound           = NewError(ErrCodeNotFound, "Resource not found", http.StatusNotFound, nil)
	ErrPayloadTooLarge    = NewError(ErrCodePayloadTooLarge, "Request body too large", http.StatusRequestEntityTooLarge, nil)
	ErrTooManyRequests    = NewError(ErrCodeTooManyRequests, "Too many requests", http.StatusTooManyRequests, nil)
	ErrTokenExpired       = NewError(ErrCodeTokenExpired, "WhatsApp access token has expired. Please renew it.", http.StatusBadRequest, nil)

	// 服務器錯誤
	ErrInternalError      = NewError(ErrCodeInternalError, "Internal server error", http.StatusInternalServerError, nil)
	ErrNotImplemented     = NewError(ErrCodeNotImplemented, "Not implemented", http.StatusNotImplemented, nil)
	ErrConfiguration      = NewError(ErrCodeConfiguration, "Integration not configured", http.StatusNotImplemented, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "Service temporarily unavailable", http.StatusServiceUnavailable, nil)

	// 業務錯誤
	ErrEmptyUpstream   = NewError(ErrCodeEmptyUpstream, "Empty response from recipe backend", http.StatusBadGateway, nil)
	ErrRecipeParse     = NewError(ErrCodeRecipeParse, "Failed to parse recipe from backend response", http.StatusBadGateway, nil)
	ErrBackendFailure  = NewError(ErrCodeBackendFailure, "Recipe backend failure", http.StatusBadGateway, nil)
	ErrPaymentProvider = NewError(ErrCodePaymentProvider, "Payment provider error", http.StatusBadGateway, nil)
	ErrMessaging       = NewError(ErrCodeMessaging, "Messaging platform error", http.StatusBadGateway, nil)
	ErrCacheFull       = NewError("CACHE_FULL", "Cache is full", http.StatusServiceUnavailable, nil)
	ErrCacheDisabled   = NewError("CACHE_DISABLED", "Cache is disabled", http.StatusServiceUnavailable, nil)
	ErrCacheMiss       = NewError("CACHE_MISS", "Cache miss", http.StatusNotFound, nil)
)
