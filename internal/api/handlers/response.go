// Package handlers holds the response helpers shared by the HTTP handlers.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-bot/internal/pkg/common"
)

// Debug 是否在錯誤回應帶出原始錯誤
var Debug bool

// Error 依錯誤類型寫出 common.ErrorResponse
func Error(c *gin.Context, err error) {
	if common.IsValidationError(err) {
		c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: err.Error(),
		})
		return
	}

	var ce *common.CustomError
	if !errors.As(err, &ce) {
		ce = common.ErrInternalError.Wrap(err)
	}
	status := common.StatusOf(ce)
	if status >= http.StatusInternalServerError {
		common.LogError("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("code", ce.Code),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ce.ToResponse(Debug))
}

// BadRequest 請求格式錯誤
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{
		Code:    common.ErrCodeInvalidRequest,
		Message: message,
	})
}
