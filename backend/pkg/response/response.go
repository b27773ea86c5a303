package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "hotel-survey/backend/pkg/errors"
)

// 统一响应结构：{success, message, ...业务字段}
// 业务字段平铺在顶层，与前端约定一致（如 surveyId、surveys、count）。

// OK 200 成功响应
func OK(c *gin.Context, fields gin.H) {
	write(c, http.StatusOK, true, "", fields)
}

// OKMessage 200 成功响应并携带提示消息
func OKMessage(c *gin.Context, message string, fields gin.H) {
	write(c, http.StatusOK, true, message, fields)
}

// Created 201 创建成功
func Created(c *gin.Context, message string, fields gin.H) {
	write(c, http.StatusCreated, true, message, fields)
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, message string) {
	write(c, httpStatus, false, message, nil)
}

// BadRequest 400
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Conflict 409
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

// FromError 按错误分类写入响应，内部原因记录到 gin 上下文供日志中间件输出
func FromError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		BadRequest(c, apperrors.MessageOf(err, "Invalid request"))
	case apperrors.KindUnauthorized:
		Unauthorized(c, apperrors.MessageOf(err, "Unauthorized"))
	case apperrors.KindNotFound:
		NotFound(c, apperrors.MessageOf(err, "Not found"))
	case apperrors.KindConflict:
		Conflict(c, apperrors.MessageOf(err, "Conflict"))
	default:
		InternalError(c)
	}
}

func write(c *gin.Context, status int, success bool, message string, fields gin.H) {
	body := gin.H{"success": success}
	if message != "" {
		body["message"] = message
	}
	for k, v := range fields {
		if k == "success" {
			continue
		}
		body[k] = v
	}
	c.JSON(status, body)
}
