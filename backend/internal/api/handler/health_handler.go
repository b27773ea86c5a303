package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查
type HealthHandler struct {
	version string
}

// NewHealthHandler 创建 HealthHandler
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

// Health GET /
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Hotel Survey API is running!",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"version":   h.version,
	})
}
