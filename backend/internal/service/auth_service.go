package service

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"hotel-survey/backend/internal/dto"
	"hotel-survey/backend/internal/repository"
	"hotel-survey/backend/pkg/jwt"
)

// TokenBlacklist 注销令牌的存储（Redis 实现）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResult, error)
	// Logout 使令牌失效；未配置黑名单时为空操作
	Logout(ctx context.Context, token string) error
}

type authService struct {
	repo       *repository.Repository
	jwtMgr     *jwt.Manager
	blacklist  TokenBlacklist
	reconciler *Reconciler
	logger     *zap.Logger
}

// NewAuthService 创建 AuthService 实例；blacklist 可为 nil
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	reconciler *Reconciler,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:       repo,
		jwtMgr:     jwtMgr,
		blacklist:  blacklist,
		reconciler: reconciler,
		logger:     logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResult, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, ErrCredentialsRequired
	}

	// 1. 查询用户
	users := s.repo.User.Load(ctx)
	idx := users.FindUser(username)
	if idx < 0 {
		s.logger.Info("登录失败：用户不存在", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}
	user := &users.Users[idx]

	// 2. 校验密码
	if !passwordMatches(user.Password, req.Password) {
		s.logger.Info("登录失败：密码错误", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	// 3. 签发 Token
	token, err := s.jwtMgr.GenerateAccessToken(user.Username, user.EffectiveRole(), user.Group)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	surveys := s.repo.Survey.Load(ctx)
	s.logger.Info("登录成功", zap.String("username", username), zap.String("role", user.EffectiveRole()))

	return &dto.LoginResult{
		User:      dto.NewUserResponse(user, s.reconciler.Resolve(user, surveys.Surveys)),
		Token:     token,
		ExpiresIn: int(s.jwtMgr.AccessTokenTTL().Seconds()),
	}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtMgr.ParseToken(token)
	if err != nil {
		return ErrInvalidToken
	}
	if s.blacklist == nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("写入令牌黑名单失败", zap.String("username", claims.Username), zap.Error(err))
		return err
	}
	return nil
}

// passwordMatches 存储值为 bcrypt 哈希时按哈希校验，否则按明文比较（历史种子数据）
func passwordMatches(stored, given string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && strings.HasPrefix(s, "$2")
}
