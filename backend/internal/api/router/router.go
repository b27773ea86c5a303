package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-survey/backend/config"
	"hotel-survey/backend/internal/api/handler"
	"hotel-survey/backend/internal/api/middleware"
	"hotel-survey/backend/internal/model"
	"hotel-survey/backend/pkg/jwt"
	"hotel-survey/backend/pkg/metrics"
	"hotel-survey/backend/pkg/redis"
	"hotel-survey/backend/pkg/response"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb、m 可为 nil：分别关闭令牌黑名单/登录限流与指标
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	m *metrics.Metrics,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		logger.Error("请求处理 panic", zap.Any("error", err), zap.String("path", c.Request.URL.Path))
		response.Error(c, http.StatusInternalServerError, "Something went wrong!")
		c.Abort()
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))
	if m != nil {
		r.Use(m.Middleware())
		r.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Route not found")
	})

	// ── 健康检查 ──
	r.GET("/", h.Health.Health)

	// require_token=false 时保持开放接口；为 true 时按角色鉴权
	authenticated := func(extra ...gin.HandlerFunc) []gin.HandlerFunc {
		if !cfg.Auth.RequireToken {
			return nil
		}
		return append([]gin.HandlerFunc{middleware.JWTAuth(jwtMgr, rdb)}, extra...)
	}
	with := func(mw []gin.HandlerFunc, hf gin.HandlerFunc) []gin.HandlerFunc {
		chain := make([]gin.HandlerFunc, 0, len(mw)+1)
		return append(append(chain, mw...), hf)
	}
	admin := authenticated(middleware.RoleAuth(model.RoleAdmin))
	self := authenticated(middleware.SelfOrAdmin("username"))
	anyUser := authenticated()

	api := r.Group("/api")
	{
		// 认证
		api.POST("/login",
			middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, time.Minute, logger),
			h.Auth.Login)
		api.POST("/logout", h.Auth.Logout)

		// 用户与分配
		api.GET("/user/:username", with(self, h.User.GetUser)...)
		api.POST("/addHotel", with(admin, h.User.AddHotel)...)

		// 问卷
		api.POST("/submitSurvey", with(anyUser, h.Survey.Submit)...)
		api.GET("/surveys", with(admin, h.Survey.ListAll)...)
		api.GET("/surveys/:username", with(self, h.Survey.ListByUser)...)
		api.GET("/hotelSurvey/:hotelName", with(anyUser, h.Survey.ListByHotel)...)

		// 统计与导出
		api.GET("/stats", with(admin, h.Stats.Stats)...)
		api.GET("/export", with(admin, h.Export.Export)...)
	}

	return r
}
