package handler

import (
	"github.com/gin-gonic/gin"

	"hotel-survey/backend/internal/dto"
	"hotel-survey/backend/internal/service"
	"hotel-survey/backend/pkg/response"
)

// UserHandler 用户与酒店分配 HTTP 处理器
type UserHandler struct {
	querySvc      service.QueryService
	assignmentSvc service.AssignmentService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(querySvc service.QueryService, assignmentSvc service.AssignmentService) *UserHandler {
	return &UserHandler{querySvc: querySvc, assignmentSvc: assignmentSvc}
}

// GetUser 用户详情（不含密码，hotels 为对账后的完成状态）
// GET /api/user/:username
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.querySvc.GetUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, gin.H{"user": user})
}

// AddHotel 为用户追加酒店分配
// POST /api/addHotel
func (h *UserHandler) AddHotel(c *gin.Context) {
	var req dto.AddHotelRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}

	added, err := h.assignmentSvc.AddHotel(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, "Hotel added successfully", gin.H{"hotel": added})
}
