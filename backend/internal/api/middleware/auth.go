package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"hotel-survey/backend/internal/model"
	"hotel-survey/backend/pkg/jwt"
	"hotel-survey/backend/pkg/redis"
	"hotel-survey/backend/pkg/response"
)

// 注入到 gin.Context 的认证信息键
const (
	CtxUsername = "username"
	CtxRole     = "role"
	CtxGroup    = "group"
)

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token；
// rdb 不为 nil 时拒绝已注销（黑名单）的令牌，Redis 出错时降级放行
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "Invalid authorization header")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		if rdb != nil {
			revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			if err == nil && revoked {
				response.Unauthorized(c, "Token has been revoked")
				c.Abort()
				return
			}
		}

		// 将用户信息注入上下文
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxGroup, claims.Group)

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if role == "" {
			response.Unauthorized(c, "Unauthenticated")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if role == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "Forbidden")
		c.Abort()
	}
}

// SelfOrAdmin 仅允许访问本人数据（路径参数 param），管理员不受限
func SelfOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetString(CtxUsername)
		if username == "" {
			response.Unauthorized(c, "Unauthenticated")
			c.Abort()
			return
		}

		if c.GetString(CtxRole) == model.RoleAdmin || c.Param(param) == username {
			c.Next()
			return
		}

		response.Forbidden(c, "Forbidden")
		c.Abort()
	}
}
