package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hotel-survey/backend/config"
	"hotel-survey/backend/internal/model"
)

// NewPostgres 初始化 PostgreSQL 连接并执行迁移
func NewPostgres(cfg *config.DatabaseConfig, logLevel string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{Logger: gormLogger(logLevel)})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	if err := RunMigrations(sqlDB, logger); err != nil {
		return nil, err
	}

	logger.Info("数据库连接成功",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("dbname", cfg.Name),
	)

	return db, nil
}

// NewSQLite 打开纯 Go 实现的 SQLite 文件库，表结构由 AutoMigrate 维护
// path 为 ":memory:" 时使用内存库（测试用）
func NewSQLite(path string, logLevel string, logger *zap.Logger) (*gorm.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("创建数据目录失败: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLogger(logLevel)})
	if err != nil {
		return nil, fmt.Errorf("打开 SQLite 失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	// SQLite 单写者：限制为一个连接，内存库也因此在连接间共享
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.Document{}); err != nil {
		return nil, fmt.Errorf("SQLite 表结构迁移失败: %w", err)
	}

	logger.Info("SQLite 打开成功", zap.String("path", path))
	return db, nil
}

func gormLogger(level string) gormlogger.Interface {
	switch level {
	case "debug":
		return gormlogger.Default.LogMode(gormlogger.Info)
	case "info":
		return gormlogger.Default.LogMode(gormlogger.Warn)
	default:
		return gormlogger.Default.LogMode(gormlogger.Silent)
	}
}
