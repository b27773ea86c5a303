package handler

import (
	"github.com/gin-gonic/gin"

	"hotel-survey/backend/internal/dto"
	"hotel-survey/backend/internal/service"
	"hotel-survey/backend/pkg/response"
)

// SurveyHandler 问卷模块 HTTP 处理器
type SurveyHandler struct {
	submissionSvc service.SubmissionService
	querySvc      service.QueryService
}

// NewSurveyHandler 创建 SurveyHandler
func NewSurveyHandler(submissionSvc service.SubmissionService, querySvc service.QueryService) *SurveyHandler {
	return &SurveyHandler{submissionSvc: submissionSvc, querySvc: querySvc}
}

// Submit 提交问卷
// POST /api/submitSurvey
func (h *SurveyHandler) Submit(c *gin.Context) {
	var req dto.SubmitSurveyRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}

	result, err := h.submissionSvc.Submit(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	fields := gin.H{
		"surveyId":          result.SurveyID,
		"completionUpdated": result.CompletionUpdated,
		"resubmitted":       result.Resubmitted,
	}
	if result.Warning != "" {
		fields["warning"] = result.Warning
	}
	response.OKMessage(c, "Survey submitted successfully", fields)
}

// ListAll 全部问卷（支持 ?hotelName=&username= 过滤）
// GET /api/surveys
func (h *SurveyHandler) ListAll(c *gin.Context) {
	var filter dto.SurveyFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	surveys := h.querySvc.ListSurveys(c.Request.Context(), filter)
	response.OK(c, gin.H{"surveys": surveys, "count": len(surveys)})
}

// ListByUser 用户的问卷
// GET /api/surveys/:username
func (h *SurveyHandler) ListByUser(c *gin.Context) {
	surveys := h.querySvc.ListSurveys(c.Request.Context(), dto.SurveyFilter{Username: c.Param("username")})
	response.OK(c, gin.H{"surveys": surveys, "count": len(surveys)})
}

// ListByHotel 酒店的问卷（酒店名 URL 解码后不区分大小写匹配）
// GET /api/hotelSurvey/:hotelName
func (h *SurveyHandler) ListByHotel(c *gin.Context) {
	surveys := h.querySvc.ListSurveys(c.Request.Context(), dto.SurveyFilter{HotelName: c.Param("hotelName")})
	response.OK(c, gin.H{"surveys": surveys, "count": len(surveys)})
}
