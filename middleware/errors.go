package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vnkhanh/e-storybook-backend/apperror"
)

// Body render lỗi theo envelope chung {success:false, error}
func Body(ae *apperror.Error) gin.H {
	body := gin.H{"success": false, "error": ae.Message}
	if ae.UpstreamStatus != 0 {
		body["upstreamStatus"] = ae.UpstreamStatus
	}
	return body
}

// Abort dừng chain và giao lỗi cho ErrorHandler render
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler render lỗi cuối cùng gắn vào context, trừ khi handler đã tự ghi response.
// 4xx log mức warn, 5xx log mức error kèm cause bị ẩn.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		ae := apperror.From(err)
		status := ae.Status()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			log.Error("request failed", fields...)
		} else {
			log.Warn("request rejected", fields...)
		}

		if c.Writer.Written() {
			return
		}
		c.JSON(status, Body(ae))
	}
}
