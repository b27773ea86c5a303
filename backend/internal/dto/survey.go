package dto

import "encoding/json"

// ── 问卷模块 DTO ──

// SubmitSurveyRequest 提交问卷请求
//
// 必填校验在 service 层完成，以便返回统一的业务错误消息
type SubmitSurveyRequest struct {
	HotelName  string          `json:"hotelName"`
	SurveyData json.RawMessage `json:"surveyData"`
	Username   string          `json:"username"`
}

// SubmitSurveyResult 提交结果
type SubmitSurveyResult struct {
	SurveyID          string `json:"surveyId"`
	CompletionUpdated bool   `json:"completionUpdated"`
	Resubmitted       bool   `json:"resubmitted"`
	Warning           string `json:"warning,omitempty"`
}

// SurveyFilter 问卷列表过滤条件，零值表示不过滤
type SurveyFilter struct {
	HotelName string `form:"hotelName"`
	Username  string `form:"username"`
}

// 导出格式
const (
	ExportFormatCSV  = "csv"
	ExportFormatJSON = "json"
	ExportFormatXLSX = "xlsx"
)

// ExportRequest 导出查询参数
type ExportRequest struct {
	SurveyFilter
	Format string `form:"format" binding:"omitempty,oneof=csv json xlsx"`
}
