package service

import pkgerrors "hotel-survey/backend/pkg/errors"

// ── 业务错误 ──
// 消息直接返回给前端，保持英文与既有客户端一致

var (
	// 问卷提交
	ErrHotelNameRequired   = pkgerrors.Validation("Hotel name is required")
	ErrSurveyDataRequired  = pkgerrors.Validation("Survey data is required")
	ErrUsernameRequired    = pkgerrors.Validation("Username is required")
	ErrSurveyDataNotObject = pkgerrors.Validation("Survey data must be a JSON object")
	ErrMissingSurveyField  = pkgerrors.Validation("Missing required survey fields")
	ErrAlreadySubmitted    = pkgerrors.Conflict("Survey already submitted for this hotel")

	// 用户与分配
	ErrUserNotFound         = pkgerrors.NotFound("User not found")
	ErrInvalidHotelRequest  = pkgerrors.Validation("Invalid hotel assignment request")
	ErrHotelAlreadyAssigned = pkgerrors.Conflict("Hotel already assigned to this user")

	// 认证
	ErrCredentialsRequired = pkgerrors.Validation("Username and password are required")
	ErrInvalidCredentials  = pkgerrors.Unauthorized("Invalid username or password")
	ErrInvalidToken        = pkgerrors.Unauthorized("Invalid or expired token")

	// 导出
	ErrUnsupportedExportFormat = pkgerrors.Validation("Unsupported export format")
)
