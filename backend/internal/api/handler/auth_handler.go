package handler

import (
	"github.com/gin-gonic/gin"

	"hotel-survey/backend/internal/dto"
	"hotel-survey/backend/internal/service"
	"hotel-survey/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录
// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req, service.ErrCredentialsRequired.Message) {
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, gin.H{
		"user":      result.User,
		"token":     result.Token,
		"expiresIn": result.ExpiresIn,
	})
}

// Logout 注销当前令牌
// POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token := BearerToken(c)
	if token == "" {
		response.Unauthorized(c, "Missing bearer token")
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), token); err != nil {
		response.FromError(c, err)
		return
	}

	response.OKMessage(c, "Logged out successfully", nil)
}
