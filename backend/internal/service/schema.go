package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"hotel-survey/backend/config"
	pkgerrors "hotel-survey/backend/pkg/errors"
)

// ── 问卷 schema ──

// 各版本的必填字段
var schemaRequiredFields = map[string][]string{
	// 早期表单：房间数 / 业主 / 电话 / 地址
	config.SchemaV1: {"numberOfRooms", "ownerName", "phoneNumber", "address"},
	// 现行表单：经理联系方式 / 空调类型 / 房价
	config.SchemaV2: {"address", "managerContactNumber", "acNonAc", "numberOfRoomsInHotel", "roomTariff"},
}

// SurveySchema 问卷数据的版本化必填字段校验器
//
// surveyData 对后端而言是不透明文档，只检查顶层为对象且必填字段存在。
// 字段名按 gjson 路径解析，额外字段可用 "contact.phone" 形式指向嵌套值。
type SurveySchema struct {
	version  string
	required []string
}

// NewSurveySchema 按版本与额外必填字段构造校验器
func NewSurveySchema(version string, extra []string) (*SurveySchema, error) {
	base, ok := schemaRequiredFields[version]
	if !ok {
		return nil, fmt.Errorf("未知的问卷 schema 版本 %q", version)
	}

	required := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, f := range append(append([]string{}, base...), extra...) {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		required = append(required, f)
	}

	return &SurveySchema{version: version, required: required}, nil
}

// Version 当前 schema 版本
func (s *SurveySchema) Version() string { return s.version }

// RequiredFields 必填字段列表（副本）
func (s *SurveySchema) RequiredFields() []string {
	return append([]string(nil), s.required...)
}

// Validate 校验 surveyData
func (s *SurveySchema) Validate(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ErrSurveyDataRequired
	}
	if !gjson.ValidBytes(trimmed) {
		return ErrSurveyDataNotObject
	}

	doc := gjson.ParseBytes(trimmed)
	if !doc.IsObject() {
		return ErrSurveyDataNotObject
	}
	if len(doc.Map()) == 0 {
		return ErrSurveyDataRequired
	}

	var missing []string
	for _, field := range s.required {
		if !fieldPresent(doc.Get(field)) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return pkgerrors.WithMessage(ErrMissingSurveyField,
			ErrMissingSurveyField.Message+": "+strings.Join(missing, ", "))
	}
	return nil
}

// fieldPresent 存在且不为 null / 空白字符串
func fieldPresent(v gjson.Result) bool {
	if !v.Exists() {
		return false
	}
	switch v.Type {
	case gjson.Null:
		return false
	case gjson.String:
		return strings.TrimSpace(v.Str) != ""
	default:
		return true
	}
}
