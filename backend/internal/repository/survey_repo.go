package repository

import (
	"context"

	"hotel-survey/backend/internal/model"
)

// SurveyRepository surveys 集合访问接口
type SurveyRepository interface {
	// Load 读取整份问卷集合；失败时降级为空集合
	Load(ctx context.Context) *model.SurveyCollection
	// Save 无条件覆盖整份问卷集合
	Save(ctx context.Context, surveys *model.SurveyCollection) error
	// Update 在写锁内读-改-写；回调返回 ErrSkipWrite 时不写入
	Update(ctx context.Context, fn func(surveys *model.SurveyCollection) error) error
}

type surveyRepo struct {
	c *documentCollection[model.SurveyCollection]
}

func (r *surveyRepo) Load(ctx context.Context) *model.SurveyCollection {
	return r.c.load(ctx)
}

func (r *surveyRepo) Save(ctx context.Context, surveys *model.SurveyCollection) error {
	return r.c.save(ctx, surveys)
}

func (r *surveyRepo) Update(ctx context.Context, fn func(surveys *model.SurveyCollection) error) error {
	return r.c.update(ctx, fn)
}

func emptySurveys() *model.SurveyCollection {
	return &model.SurveyCollection{Surveys: []model.Survey{}}
}
