package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hotel-survey/backend/internal/model"
	pkgerrors "hotel-survey/backend/pkg/errors"
)

// memStore 内存版 Store，可注入读写错误与一次版本冲突
type memStore struct {
	mu        sync.Mutex
	docs      map[string][]byte
	versions  map[string]int
	readErr   error
	writeErr  error
	conflicts int
	writes    int
}

func newMemStore() *memStore {
	return &memStore{docs: map[string][]byte{}, versions: map[string]int{}}
}

func (s *memStore) Read(_ context.Context, collection string) ([]byte, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, 0, s.readErr
	}
	data, ok := s.docs[collection]
	if !ok {
		return nil, 0, ErrDocumentNotFound
	}
	return data, s.versions[collection], nil
}

func (s *memStore) Write(_ context.Context, collection string, data []byte, expected int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	if s.conflicts > 0 {
		s.conflicts--
		// 模拟其他实例抢先写入
		s.versions[collection]++
		return pkgerrors.ErrOptimisticLock
	}
	if expected != AnyVersion && expected != s.versions[collection] {
		return pkgerrors.ErrOptimisticLock
	}
	s.writes++
	s.docs[collection] = data
	s.versions[collection]++
	return nil
}

func (s *memStore) Close() error { return nil }

func newTestRepo(s Store) *Repository {
	return NewRepository(s, NewLocalLocker(), zap.NewNop(), nil)
}

func TestCollection_LoadMissingIsEmpty(t *testing.T) {
	repo := newTestRepo(newMemStore())

	users := repo.User.Load(context.Background())
	require.NotNil(t, users)
	require.Empty(t, users.Users)

	surveys := repo.Survey.Load(context.Background())
	require.NotNil(t, surveys)
	require.Empty(t, surveys.Surveys)
}

func TestCollection_LoadDegradesOnBrokenDocument(t *testing.T) {
	s := newMemStore()
	s.docs[model.CollectionSurveys] = []byte(`{"surveys": [`)
	repo := newTestRepo(s)

	require.Empty(t, repo.Survey.Load(context.Background()).Surveys)
}

func TestCollection_LoadDegradesOnReadError(t *testing.T) {
	s := newMemStore()
	s.readErr = errors.New("disk on fire")
	repo := newTestRepo(s)

	require.Empty(t, repo.User.Load(context.Background()).Users)
}

func TestCollection_UpdateRefusesToOverwriteBrokenDocument(t *testing.T) {
	s := newMemStore()
	broken := []byte(`{"surveys": [`)
	s.docs[model.CollectionSurveys] = broken
	repo := newTestRepo(s)

	called := false
	err := repo.Survey.Update(context.Background(), func(*model.SurveyCollection) error {
		called = true
		return nil
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.KindStorage, pkgerrors.KindOf(err))
	require.False(t, called)
	require.Equal(t, broken, s.docs[model.CollectionSurveys])
}

func TestCollection_UpdateSkipWrite(t *testing.T) {
	s := newMemStore()
	repo := newTestRepo(s)

	err := repo.User.Update(context.Background(), func(*model.UserCollection) error {
		return ErrSkipWrite
	})
	require.NoError(t, err)
	require.Zero(t, s.writes)
}

func TestCollection_UpdatePropagatesCallbackError(t *testing.T) {
	s := newMemStore()
	repo := newTestRepo(s)
	want := pkgerrors.Conflict("Survey already submitted")

	err := repo.Survey.Update(context.Background(), func(*model.SurveyCollection) error {
		return want
	})
	require.ErrorIs(t, err, want)
	require.Zero(t, s.writes)
}

func TestCollection_UpdateRetriesOnceOnVersionConflict(t *testing.T) {
	s := newMemStore()
	s.conflicts = 1
	repo := newTestRepo(s)

	calls := 0
	err := repo.Survey.Update(context.Background(), func(c *model.SurveyCollection) error {
		calls++
		c.Surveys = append(c.Surveys, model.Survey{ID: "A_b"})
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.Len(t, repo.Survey.Load(context.Background()).Surveys, 1)
}

func TestCollection_UpdateGivesUpAfterSecondConflict(t *testing.T) {
	s := newMemStore()
	s.conflicts = 2
	repo := newTestRepo(s)

	err := repo.Survey.Update(context.Background(), func(*model.SurveyCollection) error { return nil })
	require.ErrorIs(t, err, pkgerrors.ErrOptimisticLock)
	require.Equal(t, pkgerrors.KindStorage, pkgerrors.KindOf(err))
}

func TestCollection_SaveWrapsWriteError(t *testing.T) {
	s := newMemStore()
	s.writeErr = errors.New("read-only file system")
	repo := newTestRepo(s)

	err := repo.Survey.Save(context.Background(), &model.SurveyCollection{})
	require.Error(t, err)
	require.Equal(t, "Failed to save surveys data", pkgerrors.MessageOf(err, ""))
}

func TestCollection_LockErrorIsStorageError(t *testing.T) {
	locker := LockerFunc(func(context.Context) (func(), error) {
		return nil, errors.New("lease held elsewhere")
	})
	repo := NewRepository(newMemStore(), locker, zap.NewNop(), nil)

	err := repo.User.Update(context.Background(), func(*model.UserCollection) error { return nil })
	require.Equal(t, pkgerrors.KindStorage, pkgerrors.KindOf(err))
}

func TestChainLockers_ReleasesInReverseOrder(t *testing.T) {
	var order []string
	mk := func(name string) Locker {
		return LockerFunc(func(context.Context) (func(), error) {
			order = append(order, "lock:"+name)
			return func() { order = append(order, "unlock:"+name) }, nil
		})
	}

	unlock, err := ChainLockers(mk("a"), mk("b")).Lock(context.Background())
	require.NoError(t, err)
	unlock()

	require.Equal(t, []string{"lock:a", "lock:b", "unlock:b", "unlock:a"}, order)
}

func TestChainLockers_ReleasesAcquiredOnFailure(t *testing.T) {
	released := false
	first := LockerFunc(func(context.Context) (func(), error) {
		return func() { released = true }, nil
	})
	failing := LockerFunc(func(context.Context) (func(), error) {
		return nil, errors.New("boom")
	})

	_, err := ChainLockers(first, failing).Lock(context.Background())
	require.Error(t, err)
	require.True(t, released)
}
