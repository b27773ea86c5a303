package repository

import (
	"context"

	"hotel-survey/backend/internal/model"
)

// UserRepository users 集合访问接口
type UserRepository interface {
	// Load 读取整份用户集合；失败时降级为空集合
	Load(ctx context.Context) *model.UserCollection
	// Save 无条件覆盖整份用户集合
	Save(ctx context.Context, users *model.UserCollection) error
	// Update 在写锁内读-改-写；回调返回 ErrSkipWrite 时不写入
	Update(ctx context.Context, fn func(users *model.UserCollection) error) error
}

type userRepo struct {
	c *documentCollection[model.UserCollection]
}

func (r *userRepo) Load(ctx context.Context) *model.UserCollection {
	return r.c.load(ctx)
}

func (r *userRepo) Save(ctx context.Context, users *model.UserCollection) error {
	return r.c.save(ctx, users)
}

func (r *userRepo) Update(ctx context.Context, fn func(users *model.UserCollection) error) error {
	return r.c.update(ctx, fn)
}

func emptyUsers() *model.UserCollection {
	return &model.UserCollection{Users: []model.User{}}
}
