package repository

import (
	"context"
	"errors"
	"sync"
)

// ErrDocumentNotFound 集合文档尚不存在
var ErrDocumentNotFound = errors.New("文档不存在")

// AnyVersion 作为 Write 的 expectedVersion 时表示无条件覆盖
const AnyVersion = -1

// Store 整文档持久化接口
//
// 每个集合（users / surveys）对应一份完整 JSON 文档：读取整份、内存中修改、整份写回。
// Write 对读者原子可见；expectedVersion 为 Read 返回的版本号，
// 版本不匹配时返回 pkg/errors.ErrOptimisticLock。不支持版本的实现总是返回版本 0。
type Store interface {
	Read(ctx context.Context, collection string) (data []byte, version int, err error)
	Write(ctx context.Context, collection string, data []byte, expectedVersion int) error
	Close() error
}

// Locker 写入串行化点：所有读-改-写在持有锁期间完成
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// localLocker 进程内互斥锁
type localLocker struct {
	mu sync.Mutex
}

// NewLocalLocker 创建进程内写锁
func NewLocalLocker() Locker {
	return &localLocker{}
}

func (l *localLocker) Lock(ctx context.Context) (func(), error) {
	// sync.Mutex 不支持取消；先检查一次 ctx，避免已取消的请求继续排队
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	return l.mu.Unlock, nil
}

// chainLocker 依次获取多把锁，按相反顺序释放
type chainLocker []Locker

// ChainLockers 组合多把锁（如 Redis 租约 + 本地文件锁）
func ChainLockers(lockers ...Locker) Locker {
	return chainLocker(lockers)
}

func (c chainLocker) Lock(ctx context.Context) (func(), error) {
	unlocks := make([]func(), 0, len(c))
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for _, l := range c {
		unlock, err := l.Lock(ctx)
		if err != nil {
			release()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}

// LockerFunc 函数适配为 Locker
type LockerFunc func(ctx context.Context) (func(), error)

func (f LockerFunc) Lock(ctx context.Context) (func(), error) { return f(ctx) }
