package dto

// ── 统计模块 DTO ──

// Overview 全局统计
//
// CompletedSurveys 为问卷记录原始条数（不去重、不对账）；
// PendingSurveys 截断为不小于 0，被截掉的数量记入 OverSubmitted。
type Overview struct {
	TotalHotels      int `json:"totalHotels"`
	CompletedSurveys int `json:"completedSurveys"`
	PendingSurveys   int `json:"pendingSurveys"`
	TotalUsers       int `json:"totalUsers"`
	OverSubmitted    int `json:"overSubmitted"`
}

// UserStat 单个用户统计
type UserStat struct {
	Username         string `json:"username"`
	Group            string `json:"group"`
	Role             string `json:"role"`
	TotalHotels      int    `json:"totalHotels"`
	CompletedSurveys int    `json:"completedSurveys"`
	PendingSurveys   int    `json:"pendingSurveys"`
	OverSubmitted    int    `json:"overSubmitted"`
}

// StatsResponse GET /api/stats
type StatsResponse struct {
	Overview  Overview   `json:"overview"`
	UserStats []UserStat `json:"userStats"`
}
