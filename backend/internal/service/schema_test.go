package service

import (
	"errors"
	"strings"
	"testing"

	"hotel-survey/backend/config"
	pkgerrors "hotel-survey/backend/pkg/errors"
)

func TestNewSurveySchema_UnknownVersion(t *testing.T) {
	if _, err := NewSurveySchema("v9", nil); err == nil {
		t.Fatal("未知版本应返回错误")
	}
}

func TestNewSurveySchema_ExtraFieldsDeduplicated(t *testing.T) {
	s, err := NewSurveySchema(config.SchemaV1, []string{"starRating", " ownerName ", ""})
	if err != nil {
		t.Fatalf("构造失败: %v", err)
	}
	got := strings.Join(s.RequiredFields(), ",")
	if got != "numberOfRooms,ownerName,phoneNumber,address,starRating" {
		t.Errorf("必填字段不符: %s", got)
	}
}

func TestSurveySchema_Validate(t *testing.T) {
	v1, _ := NewSurveySchema(config.SchemaV1, nil)
	v2, _ := NewSurveySchema(config.SchemaV2, []string{"contact.phone"})

	tests := []struct {
		name    string
		schema  *SurveySchema
		data    string
		wantErr error
	}{
		{"v1 完整", v1, `{"numberOfRooms":10,"ownerName":"A","phoneNumber":"123","address":"X"}`, nil},
		{"数字 0 视为存在", v1, `{"numberOfRooms":0,"ownerName":"A","phoneNumber":"123","address":"X"}`, nil},
		{"缺失字段", v1, `{"numberOfRooms":10,"ownerName":"A","address":"X"}`, ErrMissingSurveyField},
		{"空白字符串视为缺失", v1, `{"numberOfRooms":10,"ownerName":"  ","phoneNumber":"1","address":"X"}`, ErrMissingSurveyField},
		{"null 视为缺失", v1, `{"numberOfRooms":null,"ownerName":"A","phoneNumber":"1","address":"X"}`, ErrMissingSurveyField},
		{"空数据", v1, ``, ErrSurveyDataRequired},
		{"null 数据", v1, `null`, ErrSurveyDataRequired},
		{"空对象", v1, `{}`, ErrSurveyDataRequired},
		{"数组", v1, `[1,2]`, ErrSurveyDataNotObject},
		{"字符串", v1, `"hello"`, ErrSurveyDataNotObject},
		{"非法 JSON", v1, `{"a":`, ErrSurveyDataNotObject},
		{"v2 完整含嵌套额外字段", v2, `{"address":"X","managerContactNumber":"9","acNonAc":"AC","numberOfRoomsInHotel":12,"roomTariff":"1500","contact":{"phone":"1"}}`, nil},
		{"v2 缺嵌套额外字段", v2, `{"address":"X","managerContactNumber":"9","acNonAc":"AC","numberOfRoomsInHotel":12,"roomTariff":"1500"}`, ErrMissingSurveyField},
		{"v2 拒绝 v1 数据", v2, `{"numberOfRooms":10,"ownerName":"A","phoneNumber":"123","address":"X"}`, ErrMissingSurveyField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate([]byte(tt.data))
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("期望通过，实际: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("期望 %v，实际 %v", tt.wantErr, err)
			}
			if pkgerrors.KindOf(err) != pkgerrors.KindValidation {
				t.Errorf("应为校验错误，实际 %s", pkgerrors.KindOf(err))
			}
		})
	}
}

func TestSurveySchema_MissingFieldsListedInMessage(t *testing.T) {
	s, _ := NewSurveySchema(config.SchemaV1, nil)
	err := s.Validate([]byte(`{"numberOfRooms":10,"address":"X"}`))

	msg := pkgerrors.MessageOf(err, "")
	if msg != "Missing required survey fields: ownerName, phoneNumber" {
		t.Errorf("消息不符: %s", msg)
	}
}
