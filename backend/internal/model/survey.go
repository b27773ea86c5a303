package model

import (
	"encoding/json"
	"time"
)

// Survey 问卷提交记录 — 对应 surveys 集合中的一项
type Survey struct {
	ID               string          `json:"id"`
	HotelName        string          `json:"hotelName"`
	Username         string          `json:"username"`
	SurveyData       json.RawMessage `json:"surveyData"`
	SubmittedAt      time.Time       `json:"submittedAt"`
	FirstSubmittedAt *time.Time      `json:"firstSubmittedAt,omitempty"`
}

// SurveyID 对外展示的复合 ID：hotelName + "_" + username
// 名称中可能含 "_"，不同的 (酒店, 用户) 可能得到相同 ID，查找记录须用 FindSurvey
func SurveyID(hotelName, username string) string {
	return NormalizeHotelName(hotelName) + "_" + username
}

// SurveyCollection surveys 集合的完整文档
type SurveyCollection struct {
	Surveys []Survey `json:"surveys"`
}

// SurveyKey 问卷唯一键：(酒店名, 用户名)
type SurveyKey struct {
	HotelName string
	Username  string
}

// Key 返回记录的唯一键，酒店名按匹配规则规范化
func (s *Survey) Key() SurveyKey {
	return SurveyKey{HotelName: NormalizeHotelName(s.HotelName), Username: s.Username}
}

// FindSurvey 返回第一个匹配 (酒店名, 用户名) 的记录下标，未找到返回 -1
func (c *SurveyCollection) FindSurvey(hotelName, username string) int {
	key := SurveyKey{HotelName: NormalizeHotelName(hotelName), Username: username}
	for i := range c.Surveys {
		if c.Surveys[i].Key() == key {
			return i
		}
	}
	return -1
}
