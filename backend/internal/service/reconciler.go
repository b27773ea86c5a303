package service

import (
	"go.uber.org/zap"

	"hotel-survey/backend/internal/model"
	"hotel-survey/backend/pkg/metrics"
)

// ── 完成状态对账 ──

// 对账分歧类型
const (
	// 分配项标记为已完成，但找不到该用户对应的问卷
	AmbiguityFlagWithoutSurvey = "flag_without_survey"
	// 存在该用户的问卷，但分配项未标记完成
	AmbiguitySurveyWithoutFlag = "survey_without_flag"
)

// Ambiguity 标记与问卷记录不一致的分配项
type Ambiguity struct {
	Username  string
	HotelName string
	Kind      string
}

// Reconcile 计算用户分配列表的权威完成状态
//
// completed = 已存储标记 OR 存在 (酒店名, 用户名) 匹配的问卷。
// 只匹配该用户自己的问卷，酒店名去除首尾空白后精确比较。
// 结果单调：问卷缺失不会把已存储的 true 改回 false。
// 返回新切片，不修改入参。
func Reconcile(username string, assignments []model.Assignment, surveys []model.Survey) ([]model.Assignment, []Ambiguity) {
	submitted := make(map[string]struct{})
	for i := range surveys {
		if surveys[i].Username != username {
			continue
		}
		submitted[model.NormalizeHotelName(surveys[i].HotelName)] = struct{}{}
	}

	resolved := make([]model.Assignment, len(assignments))
	var ambiguities []Ambiguity
	for i, a := range assignments {
		_, hasSurvey := submitted[model.NormalizeHotelName(a.Name)]

		switch {
		case a.Completed && !hasSurvey:
			ambiguities = append(ambiguities, Ambiguity{Username: username, HotelName: a.Name, Kind: AmbiguityFlagWithoutSurvey})
		case !a.Completed && hasSurvey:
			ambiguities = append(ambiguities, Ambiguity{Username: username, HotelName: a.Name, Kind: AmbiguitySurveyWithoutFlag})
		}

		a.Completed = a.Completed || hasSurvey
		resolved[i] = a
	}
	return resolved, ambiguities
}

// Reconciler 对账并记录分歧
type Reconciler struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewReconciler 创建 Reconciler
func NewReconciler(logger *zap.Logger, m *metrics.Metrics) *Reconciler {
	return &Reconciler{logger: logger, metrics: m}
}

// Resolve 返回用户分配列表的对账结果，分歧写入日志与指标
func (r *Reconciler) Resolve(user *model.User, surveys []model.Survey) []model.Assignment {
	resolved, ambiguities := Reconcile(user.Username, user.Hotels, surveys)
	for _, a := range ambiguities {
		r.logger.Warn("完成状态对账分歧",
			zap.String("username", a.Username),
			zap.String("hotel", a.HotelName),
			zap.String("kind", a.Kind),
		)
		r.metrics.Ambiguity(a.Kind)
	}
	return resolved
}
