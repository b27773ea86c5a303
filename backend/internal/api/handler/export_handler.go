package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"hotel-survey/backend/internal/dto"
	"hotel-survey/backend/internal/service"
	"hotel-survey/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// Export 导出问卷
// GET /api/export?format=csv|json|xlsx&hotelName=&username=
func (h *ExportHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.FromError(c, service.ErrUnsupportedExportFormat)
		return
	}

	file, err := h.exportSvc.Export(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data.Bytes())
}
