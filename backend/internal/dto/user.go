package dto

import "hotel-survey/backend/internal/model"

// ── 用户模块 DTO ──

// UserResponse 用户信息响应（脱敏，不含密码）
type UserResponse struct {
	Username string             `json:"username"`
	Group    string             `json:"group,omitempty"`
	Role     string             `json:"role"`
	Hotels   []model.Assignment `json:"hotels"`
}

// NewUserResponse 由用户文档构造响应；hotels 由调用方传入已对账的列表
func NewUserResponse(u *model.User, hotels []model.Assignment) UserResponse {
	if hotels == nil {
		hotels = []model.Assignment{}
	}
	return UserResponse{
		Username: u.Username,
		Group:    u.Group,
		Role:     u.EffectiveRole(),
		Hotels:   hotels,
	}
}

// AddHotelRequest 为用户追加酒店分配
type AddHotelRequest struct {
	Username  string   `json:"username"  validate:"required,max=100"`
	HotelName string   `json:"hotelName" validate:"required,max=200"`
	Address   string   `json:"address"   validate:"omitempty,max=500"`
	Lat       *float64 `json:"lat"       validate:"omitempty,latitude"`
	Lng       *float64 `json:"lng"       validate:"omitempty,longitude"`
}
