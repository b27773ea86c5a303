package service

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"hotel-survey/backend/internal/model"
)

func survey(hotel, username string) model.Survey {
	return model.Survey{
		ID:          model.SurveyID(hotel, username),
		HotelName:   hotel,
		Username:    username,
		SurveyData:  v1Data(),
		SubmittedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestReconcile_FlagOrSurvey(t *testing.T) {
	assignments := []model.Assignment{
		assignment("A", false), // 无问卷
		assignment("B", true),  // 仅标记
		assignment("C", false), // 仅问卷
		assignment("D", true),  // 两者一致
	}
	surveys := []model.Survey{survey("C", "john_doe"), survey("D", "john_doe")}

	resolved, ambiguities := Reconcile("john_doe", assignments, surveys)

	want := map[string]bool{"A": false, "B": true, "C": true, "D": true}
	for _, a := range resolved {
		if a.Completed != want[a.Name] {
			t.Errorf("%s: 期望 completed=%v，实际 %v", a.Name, want[a.Name], a.Completed)
		}
	}

	if len(ambiguities) != 2 {
		t.Fatalf("期望 2 个分歧，实际 %d", len(ambiguities))
	}
	kinds := map[string]string{}
	for _, a := range ambiguities {
		kinds[a.HotelName] = a.Kind
	}
	if kinds["B"] != AmbiguityFlagWithoutSurvey || kinds["C"] != AmbiguitySurveyWithoutFlag {
		t.Errorf("分歧类型不符: %v", kinds)
	}
}

func TestReconcile_PerUserOnly(t *testing.T) {
	assignments := []model.Assignment{assignment("Grand Hotel", false)}
	surveys := []model.Survey{survey("Grand Hotel", "jane")}

	resolved, _ := Reconcile("john_doe", assignments, surveys)
	if resolved[0].Completed {
		t.Error("其他用户的问卷不应完成本用户的分配")
	}
}

func TestReconcile_TrimmedExactMatch(t *testing.T) {
	assignments := []model.Assignment{assignment(" Grand Hotel ", false), assignment("Sea View", false)}
	surveys := []model.Survey{survey("Grand Hotel", "john_doe"), survey("sea view", "john_doe")}

	resolved, _ := Reconcile("john_doe", assignments, surveys)
	if !resolved[0].Completed {
		t.Error("去除首尾空白后应匹配")
	}
	if resolved[1].Completed {
		t.Error("匹配区分大小写，不做模糊匹配")
	}
}

func TestReconcile_DoesNotMutateInput(t *testing.T) {
	assignments := []model.Assignment{assignment("A", false)}
	Reconcile("u", assignments, []model.Survey{survey("A", "u")})
	if assignments[0].Completed {
		t.Error("Reconcile 不应修改入参")
	}
}

func TestReconcile_Monotonic(t *testing.T) {
	assignments := []model.Assignment{assignment("A", true)}
	for i := 0; i < 3; i++ {
		resolved, _ := Reconcile("u", assignments, nil)
		if !resolved[0].Completed {
			t.Fatal("问卷缺失不应把已完成改回未完成")
		}
		assignments = resolved
	}
}

func TestReconciler_Resolve(t *testing.T) {
	r := NewReconciler(zap.NewNop(), nil)
	u := &model.User{Username: "u", Hotels: []model.Assignment{assignment("A", false)}}

	resolved := r.Resolve(u, []model.Survey{survey("A", "u")})
	if !resolved[0].Completed {
		t.Error("Resolve 应返回对账结果")
	}
	if u.Hotels[0].Completed {
		t.Error("Resolve 不应修改用户文档")
	}
}
