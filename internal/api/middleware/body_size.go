package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-bot/internal/pkg/common"
)

// BodySizeLimit 宣告長度超過上限時直接拒絕，其餘以 MaxBytesReader 截斷；
// webhook 簽章需讀完整 body，因此上限同時決定可驗證的最大 payload
func BodySizeLimit(maxSize int64) gin.HandlerFunc {
	tooLarge := common.ErrPayloadTooLarge.Wrap(fmt.Errorf("limit is %d bytes", maxSize))

	return func(c *gin.Context) {
		if c.Request.ContentLength <= maxSize {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
			c.Next()
			return
		}

		common.LogWarn("Rejected oversized request",
			zap.String("path", c.Request.URL.Path),
			zap.Int64("content_length", c.Request.ContentLength),
			zap.Int64("max_size", maxSize),
		)
		c.AbortWithStatusJSON(tooLarge.Status, tooLarge.ToResponse(true))
	}
}
