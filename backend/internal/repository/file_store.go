package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"hotel-survey/backend/internal/model"
)

// FileStore 以 JSON 文件保存每个集合
//
// 写入先落到 <file>.tmp 再 rename，读者不会看到半写文件。
// 进程内互斥锁 + 数据目录下的 flock 构成单写者串行化点，
// 同一数据目录上的多个进程（如服务与维护命令）也不会交错写入。
type FileStore struct {
	paths  map[string]string
	flock  *flock.Flock
	mu     sync.Mutex
	logger *zap.Logger
}

var _ Store = (*FileStore)(nil)
var _ Locker = (*FileStore)(nil)

const (
	lockFileName   = ".survey.lock"
	lockRetryDelay = 20 * time.Millisecond
)

// NewFileStore 创建文件存储；surveys 文件不存在时初始化为 {"surveys": []}
func NewFileStore(dataDir, usersFile, surveysFile string, logger *zap.Logger) (*FileStore, error) {
	logger = logger.Named("store.file")

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}

	s := &FileStore{
		paths: map[string]string{
			model.CollectionUsers:   resolvePath(dataDir, usersFile),
			model.CollectionSurveys: resolvePath(dataDir, surveysFile),
		},
		flock:  flock.New(filepath.Join(dataDir, lockFileName)),
		logger: logger,
	}

	surveysPath := s.paths[model.CollectionSurveys]
	if _, err := os.Stat(surveysPath); errors.Is(err, os.ErrNotExist) {
		if err := s.writeFile(surveysPath, []byte("{\n  \"surveys\": []\n}")); err != nil {
			return nil, fmt.Errorf("初始化 surveys 文件失败: %w", err)
		}
		logger.Info("已初始化 surveys 文件", zap.String("path", surveysPath))
	}

	if _, err := os.Stat(s.paths[model.CollectionUsers]); errors.Is(err, os.ErrNotExist) {
		logger.Warn("users 文件不存在，用户集合将视为空", zap.String("path", s.paths[model.CollectionUsers]))
	}

	return s, nil
}

// resolvePath 相对路径基于数据目录，绝对路径原样使用
func resolvePath(dataDir, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dataDir, file)
}

// Path 返回集合对应的文件路径
func (s *FileStore) Path(collection string) string {
	return s.paths[collection]
}

func (s *FileStore) Read(_ context.Context, collection string) ([]byte, int, error) {
	path, ok := s.paths[collection]
	if !ok {
		return nil, 0, fmt.Errorf("未知集合 %q", collection)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, ErrDocumentNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("读取 %s 失败: %w", path, err)
	}
	return data, 0, nil
}

// Write 文件存储不跟踪版本，expectedVersion 被忽略；并发安全由 Lock 保证
func (s *FileStore) Write(_ context.Context, collection string, data []byte, _ int) error {
	path, ok := s.paths[collection]
	if !ok {
		return fmt.Errorf("未知集合 %q", collection)
	}
	return s.writeFile(path, data)
}

func (s *FileStore) writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("提交文件失败: %w", err)
	}
	return nil
}

// Lock 获取进程内锁与跨进程文件锁
func (s *FileStore) Lock(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()

	locked, err := s.flock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		s.mu.Unlock()
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("获取文件锁失败: %w", err)
	}

	return func() {
		if err := s.flock.Unlock(); err != nil {
			s.logger.Warn("释放文件锁失败", zap.Error(err))
		}
		s.mu.Unlock()
	}, nil
}

// Close 释放文件锁句柄
func (s *FileStore) Close() error {
	return s.flock.Close()
}
