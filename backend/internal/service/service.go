package service

import (
	"go.uber.org/zap"

	"hotel-survey/backend/config"
	"hotel-survey/backend/internal/repository"
	"hotel-survey/backend/pkg/jwt"
	"hotel-survey/backend/pkg/metrics"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	Submission  SubmissionService
	Query       QueryService
	Assignment  AssignmentService
	Export      ExportService
	Maintenance MaintenanceService
}

// NewService 创建 Service 聚合
// blacklist 为 nil 时注销只校验令牌，不写黑名单；m 为 nil 时不记录指标
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	m *metrics.Metrics,
	logger *zap.Logger,
) (*Service, error) {
	schema, err := NewSurveySchema(cfg.Survey.Schema, cfg.Survey.ExtraRequiredFields)
	if err != nil {
		return nil, err
	}

	reconciler := NewReconciler(logger, m)
	query := NewQueryService(repo, reconciler, logger)

	return &Service{
		Auth:        NewAuthService(repo, jwtMgr, blacklist, reconciler, logger),
		Submission:  NewSubmissionService(repo, schema, cfg.Survey.Resubmission, m, logger),
		Query:       query,
		Assignment:  NewAssignmentService(repo, logger),
		Export:      NewExportService(query, logger),
		Maintenance: NewMaintenanceService(repo, logger),
	}, nil
}
