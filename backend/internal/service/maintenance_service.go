package service

import (
	"context"

	"go.uber.org/zap"

	"hotel-survey/backend/internal/dto"
	"hotel-survey/backend/internal/model"
	"hotel-survey/backend/internal/repository"
)

// MaintenanceService 离线数据修复（命令行使用）
type MaintenanceService interface {
	// ReconcileFlags 把对账结果回写到 users 集合，消除标记与问卷之间的分歧
	ReconcileFlags(ctx context.Context) (*dto.ReconcileReport, error)
	// Dedupe 合并同一复合键的重复问卷，保留最近一次提交
	Dedupe(ctx context.Context) (*dto.DedupeReport, error)
}

type maintenanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMaintenanceService 创建 MaintenanceService 实例
func NewMaintenanceService(repo *repository.Repository, logger *zap.Logger) MaintenanceService {
	return &maintenanceService{repo: repo, logger: logger}
}

func (s *maintenanceService) ReconcileFlags(ctx context.Context) (*dto.ReconcileReport, error) {
	surveys := s.repo.Survey.Load(ctx).Surveys

	var report dto.ReconcileReport
	err := s.repo.User.Update(ctx, func(c *model.UserCollection) error {
		report = dto.ReconcileReport{UsersScanned: len(c.Users)}
		for i := range c.Users {
			u := &c.Users[i]
			resolved, ambiguities := Reconcile(u.Username, u.Hotels, surveys)
			for _, a := range ambiguities {
				switch a.Kind {
				case AmbiguitySurveyWithoutFlag:
					report.FlagsSet++
				case AmbiguityFlagWithoutSurvey:
					report.FlagsWithoutData++
					s.logger.Warn("完成标记缺少对应问卷，保留标记",
						zap.String("username", a.Username), zap.String("hotel", a.HotelName))
				}
			}
			u.Hotels = resolved
		}
		if report.FlagsSet == 0 {
			return repository.ErrSkipWrite
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("完成标记回写完成",
		zap.Int("users", report.UsersScanned),
		zap.Int("flags_set", report.FlagsSet),
		zap.Int("flags_without_survey", report.FlagsWithoutData),
	)
	return &report, nil
}

func (s *maintenanceService) Dedupe(ctx context.Context) (*dto.DedupeReport, error) {
	var report dto.DedupeReport
	err := s.repo.Survey.Update(ctx, func(c *model.SurveyCollection) error {
		report = dto.DedupeReport{Before: len(c.Surveys)}
		c.Surveys = dedupeSurveys(c.Surveys)
		report.After = len(c.Surveys)
		report.Removed = report.Before - report.After
		if report.Removed == 0 {
			return repository.ErrSkipWrite
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("重复问卷清理完成", zap.Int("before", report.Before), zap.Int("removed", report.Removed))
	return &report, nil
}

// dedupeSurveys 每个 (酒店名, 用户名) 保留 submittedAt 最新的一条，位置取该键首次出现处；
// firstSubmittedAt 取该键最早的提交时间
func dedupeSurveys(surveys []model.Survey) []model.Survey {
	pos := make(map[model.SurveyKey]int, len(surveys))
	out := make([]model.Survey, 0, len(surveys))

	for _, sv := range surveys {
		key := sv.Key()
		i, seen := pos[key]
		if !seen {
			pos[key] = len(out)
			out = append(out, sv)
			continue
		}

		kept := out[i]
		earliest := kept.SubmittedAt
		if kept.FirstSubmittedAt != nil && kept.FirstSubmittedAt.Before(earliest) {
			earliest = *kept.FirstSubmittedAt
		}
		if sv.SubmittedAt.Before(earliest) {
			earliest = sv.SubmittedAt
		}
		if sv.FirstSubmittedAt != nil && sv.FirstSubmittedAt.Before(earliest) {
			earliest = *sv.FirstSubmittedAt
		}

		latest := kept
		if !sv.SubmittedAt.Before(kept.SubmittedAt) {
			latest = sv
		}
		latest.FirstSubmittedAt = &earliest
		out[i] = latest
	}
	return out
}
