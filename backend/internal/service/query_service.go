package service

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"hotel-survey/backend/internal/dto"
	"hotel-survey/backend/internal/model"
	"hotel-survey/backend/internal/repository"
)

// QueryService 读侧查询接口
//
// 所有读取都重新加载集合并实时对账，不做缓存。
type QueryService interface {
	GetUser(ctx context.Context, username string) (*dto.UserResponse, error)
	ListAssignments(ctx context.Context, username string) []model.Assignment
	ListSurveys(ctx context.Context, filter dto.SurveyFilter) []model.Survey
	Overview(ctx context.Context) *dto.StatsResponse
}

type queryService struct {
	repo       *repository.Repository
	reconciler *Reconciler
	logger     *zap.Logger
}

// NewQueryService 创建 QueryService 实例
func NewQueryService(repo *repository.Repository, reconciler *Reconciler, logger *zap.Logger) QueryService {
	return &queryService{repo: repo, reconciler: reconciler, logger: logger}
}

// GetUser 返回脱敏用户信息，hotels 为对账后的完成状态
func (s *queryService) GetUser(ctx context.Context, username string) (*dto.UserResponse, error) {
	users := s.repo.User.Load(ctx)
	idx := users.FindUser(username)
	if idx < 0 {
		return nil, ErrUserNotFound
	}

	u := &users.Users[idx]
	surveys := s.repo.Survey.Load(ctx)
	resp := dto.NewUserResponse(u, s.reconciler.Resolve(u, surveys.Surveys))
	return &resp, nil
}

// ListAssignments 用户不存在时返回空列表
func (s *queryService) ListAssignments(ctx context.Context, username string) []model.Assignment {
	users := s.repo.User.Load(ctx)
	idx := users.FindUser(username)
	if idx < 0 {
		return []model.Assignment{}
	}
	surveys := s.repo.Survey.Load(ctx)
	return s.reconciler.Resolve(&users.Users[idx], surveys.Surveys)
}

// ListSurveys 列出问卷记录
//
// 用户名精确匹配；酒店名先 URL 解码，再去除首尾空白后不区分大小写精确匹配。
func (s *queryService) ListSurveys(ctx context.Context, filter dto.SurveyFilter) []model.Survey {
	surveys := s.repo.Survey.Load(ctx).Surveys
	hotel := decodeHotelName(filter.HotelName)

	result := make([]model.Survey, 0, len(surveys))
	for _, sv := range surveys {
		if filter.Username != "" && sv.Username != filter.Username {
			continue
		}
		if hotel != "" && !strings.EqualFold(model.NormalizeHotelName(sv.HotelName), hotel) {
			continue
		}
		result = append(result, sv)
	}
	return result
}

// decodeHotelName 解码失败时按原文匹配
func decodeHotelName(raw string) string {
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}
	return model.NormalizeHotelName(decoded)
}

// ═══════════════════════════════════════════════════════════
// Overview 全局与按用户统计
// ═══════════════════════════════════════════════════════════
//
// completedSurveys 为原始问卷条数；pending = total - completed，
// 小于 0 时截断为 0，差额记入 overSubmitted（为未分配酒店提交的问卷）。

func (s *queryService) Overview(ctx context.Context) *dto.StatsResponse {
	users := s.repo.User.Load(ctx).Users
	surveys := s.repo.Survey.Load(ctx).Surveys

	perUser := make(map[string]int, len(users))
	for _, sv := range surveys {
		perUser[sv.Username]++
	}

	resp := &dto.StatsResponse{UserStats: make([]dto.UserStat, 0, len(users))}
	for i := range users {
		u := &users[i]
		pending, over := clampPending(len(u.Hotels), perUser[u.Username])
		resp.UserStats = append(resp.UserStats, dto.UserStat{
			Username:         u.Username,
			Group:            u.Group,
			Role:             u.EffectiveRole(),
			TotalHotels:      len(u.Hotels),
			CompletedSurveys: perUser[u.Username],
			PendingSurveys:   pending,
			OverSubmitted:    over,
		})
		resp.Overview.TotalHotels += len(u.Hotels)
	}

	resp.Overview.TotalUsers = len(users)
	resp.Overview.CompletedSurveys = len(surveys)
	resp.Overview.PendingSurveys, resp.Overview.OverSubmitted = clampPending(resp.Overview.TotalHotels, len(surveys))
	return resp
}

func clampPending(total, completed int) (pending, over int) {
	pending = total - completed
	if pending < 0 {
		return 0, -pending
	}
	return pending, 0
}
