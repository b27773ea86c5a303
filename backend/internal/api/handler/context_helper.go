package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hotel-survey/backend/pkg/response"
)

// BearerToken 提取 Authorization: Bearer <token>，不存在返回空串
func BearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// bindJSON 解析请求体；失败时写入 400（超出大小限制时 413）并返回 false
func bindJSON(c *gin.Context, obj any, message string) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		response.BadRequest(c, message)
		return false
	}
	return true
}
