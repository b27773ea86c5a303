package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	pkgerrors "hotel-survey/backend/pkg/errors"
	"hotel-survey/backend/pkg/metrics"
)

// ErrSkipWrite 由 Update 的回调返回：放弃本次写入且不视为错误
var ErrSkipWrite = errors.New("skip write")

// documentCollection 单个集合的整文档读写，T 为集合文档类型
type documentCollection[T any] struct {
	name    string
	store   Store
	locker  Locker
	logger  *zap.Logger
	metrics *metrics.Metrics
	empty   func() *T
}

// load 读取失败或解析失败时记录日志并降级为空集合，从不返回错误
func (c *documentCollection[T]) load(ctx context.Context) *T {
	doc, _, err := c.loadStrict(ctx)
	if err != nil {
		c.logger.Warn("读取集合失败，降级为空集合", zap.String("collection", c.name), zap.Error(err))
		c.metrics.StoreReadDegraded(c.name)
		return c.empty()
	}
	return doc
}

// loadStrict 文档不存在视为空集合（版本 0），其余失败原样返回
func (c *documentCollection[T]) loadStrict(ctx context.Context) (*T, int, error) {
	data, version, err := c.store.Read(ctx, c.name)
	if errors.Is(err, ErrDocumentNotFound) {
		return c.empty(), 0, nil
	}
	if err != nil {
		return nil, 0, err
	}

	doc := c.empty()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, 0, fmt.Errorf("解析集合 %s 失败: %w", c.name, err)
	}
	return doc, version, nil
}

// save 无条件覆盖整份文档
func (c *documentCollection[T]) save(ctx context.Context, doc *T) error {
	unlock, err := c.locker.Lock(ctx)
	if err != nil {
		return pkgerrors.Storage("Failed to acquire store lock", err)
	}
	defer unlock()

	return c.write(ctx, doc, AnyVersion)
}

// update 在写锁内完成 严格读取 → 回调修改 → 写回
//
// 严格读取失败时不会降级，避免用空集合覆盖无法解析的文档。
// 乐观锁冲突（其他实例已写入）时基于最新文档重放一次回调。
func (c *documentCollection[T]) update(ctx context.Context, fn func(*T) error) error {
	unlock, err := c.locker.Lock(ctx)
	if err != nil {
		return pkgerrors.Storage("Failed to acquire store lock", err)
	}
	defer unlock()

	for attempt := 0; ; attempt++ {
		doc, version, err := c.loadStrict(ctx)
		if err != nil {
			return pkgerrors.Storage(fmt.Sprintf("Failed to read %s data", c.name), err)
		}

		if err := fn(doc); err != nil {
			if errors.Is(err, ErrSkipWrite) {
				return nil
			}
			return err
		}

		err = c.write(ctx, doc, version)
		if errors.Is(err, pkgerrors.ErrOptimisticLock) && attempt == 0 {
			c.logger.Warn("集合写入版本冲突，重试一次", zap.String("collection", c.name))
			continue
		}
		return err
	}
}

func (c *documentCollection[T]) write(ctx context.Context, doc *T, version int) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return pkgerrors.Storage(fmt.Sprintf("Failed to encode %s data", c.name), err)
	}
	if err := c.store.Write(ctx, c.name, data, version); err != nil {
		c.logger.Error("写入集合失败", zap.String("collection", c.name), zap.Error(err))
		return pkgerrors.Storage(fmt.Sprintf("Failed to save %s data", c.name), err)
	}
	return nil
}
