package handler

import "hotel-survey/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Health *HealthHandler
	Auth   *AuthHandler
	User   *UserHandler
	Survey *SurveyHandler
	Stats  *StatsHandler
	Export *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, version string) *Handler {
	return &Handler{
		Health: NewHealthHandler(version),
		Auth:   NewAuthHandler(svc.Auth),
		User:   NewUserHandler(svc.Query, svc.Assignment),
		Survey: NewSurveyHandler(svc.Submission, svc.Query),
		Stats:  NewStatsHandler(svc.Query),
		Export: NewExportHandler(svc.Export),
	}
}
