package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"hotel-survey/backend/config"
	"hotel-survey/backend/internal/dto"
	"hotel-survey/backend/internal/model"
	"hotel-survey/backend/internal/repository"
	pkgerrors "hotel-survey/backend/pkg/errors"
	"hotel-survey/backend/pkg/metrics"
)

// 提交结果（指标标签）
const (
	outcomeCreated     = "created"
	outcomeResubmitted = "resubmitted"
	outcomePartial     = "partial"
	outcomeRejected    = "rejected"
	outcomeFailed      = "failed"
)

// 部分成功提示
const (
	warnUserNotFound      = "User not found; survey saved but completion status not updated"
	warnHotelNotAssigned  = "Hotel is not assigned to this user; survey saved but completion status not updated"
	warnCompletionFailure = "Survey saved but completion status could not be updated"
)

// SubmissionService 问卷提交业务接口
type SubmissionService interface {
	// Submit 校验并记录一次问卷提交，随后把对应分配项标记为已完成
	Submit(ctx context.Context, req *dto.SubmitSurveyRequest) (*dto.SubmitSurveyResult, error)
}

type submissionService struct {
	repo    *repository.Repository
	schema  *SurveySchema
	policy  string
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewSubmissionService 创建 SubmissionService 实例
func NewSubmissionService(
	repo *repository.Repository,
	schema *SurveySchema,
	policy string,
	m *metrics.Metrics,
	logger *zap.Logger,
) SubmissionService {
	if policy == "" {
		policy = config.ResubmitUpsert
	}
	return &submissionService{
		repo:    repo,
		schema:  schema,
		policy:  policy,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// ═══════════════════════════════════════════════════════════
// Submit
// ═══════════════════════════════════════════════════════════
//
// 顺序：
//  1. 校验（失败不触碰任何集合）
//  2. 写 surveys 集合，这是持久化边界；失败则直接返回，不修改 users
//  3. 写 users 集合中的完成标记；用户或酒店不存在时视为部分成功
//
// 两次写入各自持有写锁完成 读-改-写，不会互相覆盖其他请求的修改。
// 第 3 步失败时问卷已落盘，对账逻辑仍能从问卷推导出完成状态。

func (s *submissionService) Submit(ctx context.Context, req *dto.SubmitSurveyRequest) (*dto.SubmitSurveyResult, error) {
	hotel := model.NormalizeHotelName(req.HotelName)
	username := strings.TrimSpace(req.Username)

	if err := s.validate(hotel, username, req.SurveyData); err != nil {
		s.metrics.SubmissionOutcome(outcomeRejected)
		return nil, err
	}

	// 1. 记录问卷
	id := model.SurveyID(hotel, username)
	resubmitted, err := s.recordSurvey(ctx, model.Survey{
		ID:          id,
		HotelName:   hotel,
		Username:    username,
		SurveyData:  req.SurveyData,
		SubmittedAt: s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrAlreadySubmitted) {
			s.metrics.SubmissionOutcome(outcomeRejected)
		} else {
			s.metrics.SubmissionOutcome(outcomeFailed)
			s.logger.Error("保存问卷失败",
				zap.String("username", username), zap.String("hotel", hotel), zap.Error(err))
		}
		return nil, err
	}

	result := &dto.SubmitSurveyResult{SurveyID: id, Resubmitted: resubmitted}
	if resubmitted {
		s.logger.Warn("重复提交问卷",
			zap.String("username", username), zap.String("hotel", hotel), zap.String("policy", s.policy))
	}

	// 2. 更新完成标记
	updated, warning, err := s.markCompleted(ctx, username, hotel)
	if err != nil {
		s.logger.Error("更新完成标记失败，问卷已保存",
			zap.String("username", username), zap.String("hotel", hotel), zap.Error(err))
		warning = warnCompletionFailure
	}
	result.CompletionUpdated = updated
	result.Warning = warning

	switch {
	case !updated:
		s.logger.Warn("问卷已保存但未更新完成标记",
			zap.String("username", username), zap.String("hotel", hotel), zap.String("reason", warning))
		s.metrics.SubmissionOutcome(outcomePartial)
	case resubmitted:
		s.metrics.SubmissionOutcome(outcomeResubmitted)
	default:
		s.metrics.SubmissionOutcome(outcomeCreated)
	}

	return result, nil
}

func (s *submissionService) validate(hotel, username string, data []byte) error {
	if hotel == "" {
		return ErrHotelNameRequired
	}
	if username == "" {
		return ErrUsernameRequired
	}
	return s.schema.Validate(data)
}

// recordSurvey 按重复提交策略写入问卷，返回是否为重复提交
func (s *submissionService) recordSurvey(ctx context.Context, record model.Survey) (bool, error) {
	var resubmitted bool

	err := s.repo.Survey.Update(ctx, func(c *model.SurveyCollection) error {
		idx := c.FindSurvey(record.HotelName, record.Username)
		resubmitted = idx >= 0
		if idx < 0 {
			c.Surveys = append(c.Surveys, record)
			return nil
		}

		switch s.policy {
		case config.ResubmitReject:
			return ErrAlreadySubmitted
		case config.ResubmitAppend:
			c.Surveys = append(c.Surveys, record)
		default:
			prev := c.Surveys[idx]
			first := prev.FirstSubmittedAt
			if first == nil {
				t := prev.SubmittedAt
				first = &t
			}
			record.FirstSubmittedAt = first
			c.Surveys[idx] = record
		}
		return nil
	})
	if err != nil {
		var appErr *pkgerrors.Error
		if !errors.As(err, &appErr) {
			err = pkgerrors.Storage("Failed to save survey data", err)
		}
		return false, err
	}
	return resubmitted, nil
}

// markCompleted 把用户对应分配项标记为已完成
// 返回 (是否已标记, 部分成功提示, 存储错误)
func (s *submissionService) markCompleted(ctx context.Context, username, hotel string) (bool, string, error) {
	var (
		updated bool
		warning string
	)

	err := s.repo.User.Update(ctx, func(c *model.UserCollection) error {
		updated, warning = false, ""
		ui := c.FindUser(username)
		if ui < 0 {
			warning = warnUserNotFound
			return repository.ErrSkipWrite
		}

		u := &c.Users[ui]
		hi := u.FindAssignment(hotel)
		if hi < 0 {
			warning = warnHotelNotAssigned
			return repository.ErrSkipWrite
		}

		updated = true
		if u.Hotels[hi].Completed {
			return repository.ErrSkipWrite
		}
		u.Hotels[hi].Completed = true
		return nil
	})
	if err != nil {
		return false, "", err
	}
	return updated, warning, nil
}
