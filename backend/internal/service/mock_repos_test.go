package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"hotel-survey/backend/internal/model"
	"hotel-survey/backend/internal/repository"
	pkgerrors "hotel-survey/backend/pkg/errors"
)

// 模拟持久化：每次读写都经过 JSON 编解码，避免测试与实现共享切片

func clone[T any](v *T) *T {
	data, _ := json.Marshal(v)
	out := new(T)
	_ = json.Unmarshal(data, out)
	return out
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu       sync.Mutex
	doc      *model.UserCollection
	writeErr error
	writes   int
}

func newMockUserRepo(users ...model.User) *mockUserRepo {
	if users == nil {
		users = []model.User{}
	}
	return &mockUserRepo{doc: &model.UserCollection{Users: users}}
}

func (m *mockUserRepo) Load(_ context.Context) *model.UserCollection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.doc)
}

func (m *mockUserRepo) Save(_ context.Context, users *model.UserCollection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return pkgerrors.Storage("Failed to save users data", m.writeErr)
	}
	m.doc = clone(users)
	m.writes++
	return nil
}

func (m *mockUserRepo) Update(_ context.Context, fn func(*model.UserCollection) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := clone(m.doc)
	if err := fn(doc); err != nil {
		if errors.Is(err, repository.ErrSkipWrite) {
			return nil
		}
		return err
	}
	if m.writeErr != nil {
		return pkgerrors.Storage("Failed to save users data", m.writeErr)
	}
	m.doc = doc
	m.writes++
	return nil
}

func (m *mockUserRepo) user(username string) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.doc.FindUser(username); i >= 0 {
		return &clone(m.doc).Users[i]
	}
	return nil
}

// ── Mock SurveyRepository ──

type mockSurveyRepo struct {
	mu       sync.Mutex
	doc      *model.SurveyCollection
	writeErr error
	writes   int
}

func newMockSurveyRepo(surveys ...model.Survey) *mockSurveyRepo {
	if surveys == nil {
		surveys = []model.Survey{}
	}
	return &mockSurveyRepo{doc: &model.SurveyCollection{Surveys: surveys}}
}

func (m *mockSurveyRepo) Load(_ context.Context) *model.SurveyCollection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.doc)
}

func (m *mockSurveyRepo) Save(_ context.Context, surveys *model.SurveyCollection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return pkgerrors.Storage("Failed to save surveys data", m.writeErr)
	}
	m.doc = clone(surveys)
	m.writes++
	return nil
}

func (m *mockSurveyRepo) Update(_ context.Context, fn func(*model.SurveyCollection) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := clone(m.doc)
	if err := fn(doc); err != nil {
		if errors.Is(err, repository.ErrSkipWrite) {
			return nil
		}
		return err
	}
	if m.writeErr != nil {
		return pkgerrors.Storage("Failed to save surveys data", m.writeErr)
	}
	m.doc = doc
	m.writes++
	return nil
}

func (m *mockSurveyRepo) all() []model.Survey {
	return m.Load(context.Background()).Surveys
}

// ── 测试辅助 ──

func newTestRepo(users *mockUserRepo, surveys *mockSurveyRepo) *repository.Repository {
	return &repository.Repository{User: users, Survey: surveys}
}

func assignment(name string, completed bool) model.Assignment {
	return model.Assignment{Name: name, Completed: completed}
}

func v1Data() json.RawMessage {
	return json.RawMessage(`{"numberOfRooms":10,"ownerName":"A","phoneNumber":"123","address":"X"}`)
}
