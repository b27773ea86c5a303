package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-survey/backend/internal/model"
	pkgerrors "hotel-survey/backend/pkg/errors"
)

// DBStore 以 documents 表保存每个集合的整份 JSON（SQLite / PostgreSQL 通用）
//
// 写入通过 version 列实现乐观锁：只有读取时的版本仍为最新才会写入成功。
type DBStore struct {
	db *gorm.DB
}

var _ Store = (*DBStore)(nil)

// NewDBStore 创建数据库文档存储
func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Read(ctx context.Context, collection string) ([]byte, int, error) {
	var doc model.Document
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, ErrDocumentNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("读取文档 %s 失败: %w", collection, err)
	}
	return doc.Payload, doc.Version, nil
}

// Write expectedVersion 为 0 表示首次创建；AnyVersion 表示无条件覆盖
func (s *DBStore) Write(ctx context.Context, collection string, data []byte, expectedVersion int) error {
	now := time.Now()
	db := s.db.WithContext(ctx)

	switch expectedVersion {
	case AnyVersion:
		return db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "collection"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"payload":    data,
				"version":    gorm.Expr("documents.version + 1"),
				"updated_at": now,
			}),
		}).Create(&model.Document{
			Collection: collection,
			Payload:    data,
			Version:    1,
			UpdatedAt:  now,
		}).Error

	case 0:
		result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Document{
			Collection: collection,
			Payload:    data,
			Version:    1,
			UpdatedAt:  now,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}
		return nil

	default:
		result := db.Model(&model.Document{}).
			Where("collection = ? AND version = ?", collection, expectedVersion).
			Updates(map[string]interface{}{
				"payload":    data,
				"version":    expectedVersion + 1,
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}
		return nil
	}
}

// Close 关闭底层连接池
func (s *DBStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
