package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hotel-survey/backend/config"
	"hotel-survey/backend/pkg/database"
	"hotel-survey/backend/pkg/redis"
)

const redisLockName = "survey-store"

// OpenStore 按配置创建存储与写锁
// rdb 仅在 store.lock=redis 时使用，可为 nil
func OpenStore(cfg *config.Config, rdb *redis.Client, logger *zap.Logger) (Store, Locker, error) {
	var (
		store  Store
		locker Locker
	)

	switch cfg.Store.Driver {
	case config.StoreDriverFile:
		fs, err := NewFileStore(cfg.Store.DataDir, cfg.Store.UsersFile, cfg.Store.SurveysFile, logger)
		if err != nil {
			return nil, nil, err
		}
		store, locker = fs, fs

	case config.StoreDriverSQLite:
		db, err := database.NewSQLite(cfg.Store.SQLitePath, cfg.Log.Level, logger)
		if err != nil {
			return nil, nil, err
		}
		store, locker = NewDBStore(db), NewLocalLocker()

	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(&cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			return nil, nil, err
		}
		store, locker = NewDBStore(db), NewLocalLocker()

	default:
		return nil, nil, fmt.Errorf("未知的存储驱动 %q", cfg.Store.Driver)
	}

	if cfg.Store.Lock == config.StoreLockRedis {
		if rdb == nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("store.lock=redis 但 Redis 不可用")
		}
		locker = ChainLockers(NewRedisLocker(rdb, cfg.Store.LockTTL), locker)
	}

	logger.Info("记录存储已就绪",
		zap.String("driver", cfg.Store.Driver),
		zap.String("lock", cfg.Store.Lock),
	)
	return store, locker, nil
}

// NewRedisLocker 多实例共享的租约写锁
func NewRedisLocker(rdb *redis.Client, ttl time.Duration) Locker {
	return LockerFunc(func(ctx context.Context) (func(), error) {
		return rdb.AcquireLock(ctx, redisLockName, ttl)
	})
}
