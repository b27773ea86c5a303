package repository

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hotel-survey/backend/internal/model"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFileStore(dir, "users.json", "surveys.json", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = fs.Close() })
	return fs, dir
}

func TestFileStore_InitializesSurveysFile(t *testing.T) {
	fs, dir := newTestFileStore(t)

	data, err := os.ReadFile(filepath.Join(dir, "surveys.json"))
	require.NoError(t, err)
	require.JSONEq(t, `{"surveys": []}`, string(data))

	_, _, err = fs.Read(context.Background(), model.CollectionUsers)
	require.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestFileStore_KeepsExistingSurveysFile(t *testing.T) {
	dir := t.TempDir()
	existing := `{"surveys":[{"id":"A_b","hotelName":"A","username":"b","surveyData":{},"submittedAt":"2024-01-01T00:00:00Z"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "surveys.json"), []byte(existing), 0o644))

	fs, err := NewFileStore(dir, "users.json", "surveys.json", zap.NewNop())
	require.NoError(t, err)
	defer fs.Close()

	data, _, err := fs.Read(context.Background(), model.CollectionSurveys)
	require.NoError(t, err)
	require.JSONEq(t, existing, string(data))
}

func TestFileStore_WriteIsAtomicRename(t *testing.T) {
	fs, dir := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, fs.Write(ctx, model.CollectionUsers, []byte(`{"users":[]}`), AnyVersion))

	_, err := os.Stat(filepath.Join(dir, "users.json.tmp"))
	require.True(t, os.IsNotExist(err), "临时文件应已被 rename")

	data, version, err := fs.Read(ctx, model.CollectionUsers)
	require.NoError(t, err)
	require.Equal(t, 0, version)
	require.JSONEq(t, `{"users":[]}`, string(data))
}

func TestFileStore_UnknownCollection(t *testing.T) {
	fs, _ := newTestFileStore(t)
	_, _, err := fs.Read(context.Background(), "hotels")
	require.Error(t, err)
	require.Error(t, fs.Write(context.Background(), "hotels", nil, AnyVersion))
}

func TestFileStore_AbsolutePathsRespected(t *testing.T) {
	dir := t.TempDir()
	usersPath := filepath.Join(t.TempDir(), "seed-users.json")

	fs, err := NewFileStore(dir, usersPath, "surveys.json", zap.NewNop())
	require.NoError(t, err)
	defer fs.Close()

	require.Equal(t, usersPath, fs.Path(model.CollectionUsers))
	require.Equal(t, filepath.Join(dir, "surveys.json"), fs.Path(model.CollectionSurveys))
}

func TestFileStore_LockSerializesWriters(t *testing.T) {
	fs, _ := newTestFileStore(t)

	unlock, err := fs.Lock(context.Background())
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		u, err := fs.Lock(context.Background())
		if err == nil {
			close(acquired)
			u()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("持锁期间不应有第二个写者")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("释放后第二个写者应获得锁")
	}
}

func TestFileStore_LockHonorsCanceledContext(t *testing.T) {
	fs, _ := newTestFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fs.Lock(ctx)
	require.Error(t, err)
}

func TestFileStore_ConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	fs, _ := newTestFileStore(t)
	repo := NewRepository(fs, fs, zap.NewNop(), nil)
	ctx := context.Background()

	require.NoError(t, repo.User.Save(ctx, &model.UserCollection{Users: []model.User{{
		Username: "john_doe",
		Hotels:   []model.Assignment{{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}},
	}}}))

	var wg sync.WaitGroup
	for _, name := range []string{"A", "B", "C", "D"} {
		wg.Add(1)
		go func(hotel string) {
			defer wg.Done()
			err := repo.User.Update(ctx, func(users *model.UserCollection) error {
				u := &users.Users[0]
				u.Hotels[u.FindAssignment(hotel)].Completed = true
				return nil
			})
			require.NoError(t, err)
		}(name)
	}
	wg.Wait()

	for _, h := range repo.User.Load(ctx).Users[0].Hotels {
		require.True(t, h.Completed, "酒店 %s 的完成标记丢失", h.Name)
	}
}
