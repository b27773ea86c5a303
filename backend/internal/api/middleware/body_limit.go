package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-survey/backend/pkg/response"
)

// BodyLimit 请求体大小限制中间件
// Content-Length 已超限的请求直接返回 413；未声明长度的请求由 MaxBytesReader 在读取时截断，
// handler 绑定失败时识别 *http.MaxBytesError 并返回 413
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, "Request body too large")
			c.Abort()
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
