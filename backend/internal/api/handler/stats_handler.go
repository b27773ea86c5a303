package handler

import (
	"github.com/gin-gonic/gin"

	"hotel-survey/backend/internal/service"
	"hotel-survey/backend/pkg/response"
)

// StatsHandler 统计模块 HTTP 处理器
type StatsHandler struct {
	querySvc service.QueryService
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(querySvc service.QueryService) *StatsHandler {
	return &StatsHandler{querySvc: querySvc}
}

// Stats 全局与按用户统计
// GET /api/stats
func (h *StatsHandler) Stats(c *gin.Context) {
	stats := h.querySvc.Overview(c.Request.Context())
	response.OK(c, gin.H{"overview": stats.Overview, "userStats": stats.UserStats})
}
