package repository

import (
	"go.uber.org/zap"

	"hotel-survey/backend/internal/model"
	"hotel-survey/backend/pkg/metrics"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User   UserRepository
	Survey SurveyRepository
}

// NewRepository 基于同一存储与写锁创建两个集合的 Repository
// m 可为 nil
func NewRepository(store Store, locker Locker, logger *zap.Logger, m *metrics.Metrics) *Repository {
	logger = logger.Named("repository")
	return &Repository{
		User: &userRepo{c: &documentCollection[model.UserCollection]{
			name:    model.CollectionUsers,
			store:   store,
			locker:  locker,
			logger:  logger,
			metrics: m,
			empty:   emptyUsers,
		}},
		Survey: &surveyRepo{c: &documentCollection[model.SurveyCollection]{
			name:    model.CollectionSurveys,
			store:   store,
			locker:  locker,
			logger:  logger,
			metrics: m,
			empty:   emptySurveys,
		}},
	}
}
