package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hotel-survey/backend/config"
	"hotel-survey/backend/internal/api/handler"
	"hotel-survey/backend/internal/api/router"
	"hotel-survey/backend/internal/repository"
	"hotel-survey/backend/internal/service"
	"hotel-survey/backend/pkg/jwt"
	applogger "hotel-survey/backend/pkg/logger"
	"hotel-survey/backend/pkg/metrics"
	"hotel-survey/backend/pkg/redis"
)

// version 构建时通过 -ldflags "-X main.version=..." 注入
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "hotel-survey",
		Short:         "酒店问卷提交与完成度追踪服务",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "配置文件路径（默认查找 ./config/config.yaml）")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "启动 HTTP 服务",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cfgPath)
			},
		},
		&cobra.Command{
			Use:   "reconcile",
			Short: "按已提交问卷回写用户的酒店完成标记",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMaintenance(cmd.Context(), cfgPath, func(ctx context.Context, a *app) error {
					report, err := a.svc.Maintenance.ReconcileFlags(ctx)
					if err != nil {
						return err
					}
					cmd.Printf("扫描用户 %d，新置完成 %d，有标记无问卷 %d\n",
						report.UsersScanned, report.FlagsSet, report.FlagsWithoutData)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "dedupe",
			Short: "合并重复提交的问卷，保留最近一次",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMaintenance(cmd.Context(), cfgPath, func(ctx context.Context, a *app) error {
					report, err := a.svc.Maintenance.Dedupe(ctx)
					if err != nil {
						return err
					}
					cmd.Printf("问卷 %d → %d，移除 %d\n", report.Before, report.After, report.Removed)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "打印版本号",
			Run: func(cmd *cobra.Command, _ []string) {
				cmd.Println(version)
			},
		},
	)

	return root
}

// app 启动期装配好的依赖
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	rdb     *redis.Client
	store   repository.Store
	metrics *metrics.Metrics
	jwtMgr  *jwt.Manager
	svc     *service.Service
}

// bootstrap 加载配置并完成依赖注入: Store → Repository → Service
func bootstrap(cfgPath string) (*app, error) {
	// 1. 加载配置
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	// 3. 连接 Redis（可选：写锁依赖 Redis 时必须可用，否则降级运行）
	if cfg.Redis.Enabled {
		a.rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			if cfg.Store.Lock == config.StoreLockRedis {
				return nil, fmt.Errorf("连接 Redis 失败: %w", err)
			}
			logger.Warn("Redis 连接失败，令牌黑名单与登录限流将不可用", zap.Error(err))
			a.rdb = nil
		}
	}

	// 4. 打开记录存储
	store, locker, err := repository.OpenStore(cfg, a.rdb, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("打开记录存储失败: %w", err)
	}
	a.store = store

	if cfg.Metrics.Enabled {
		a.metrics = metrics.New(cfg.Metrics)
	}

	// 5. 依赖注入: Repository → Service
	repo := repository.NewRepository(store, locker, logger, a.metrics)
	a.jwtMgr = jwt.NewManager(&cfg.Auth)

	var blacklist service.TokenBlacklist
	if a.rdb != nil {
		blacklist = a.rdb
	}
	a.svc, err = service.NewService(cfg, repo, a.jwtMgr, blacklist, a.metrics, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("初始化服务失败: %w", err)
	}

	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("关闭记录存储失败", zap.Error(err))
		}
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	_ = a.logger.Sync()
}

// ═══════════════════════════════════════════════════════════
// serve
// ═══════════════════════════════════════════════════════════

func runServe(cfgPath string) error {
	a, err := bootstrap(cfgPath)
	if err != nil {
		return err
	}
	defer a.close()

	cfg, logger := a.cfg, a.logger
	logger.Info("应用启动中...",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Driver),
		zap.Bool("require_token", cfg.Auth.RequireToken),
	)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	h := handler.NewHandler(a.svc, version)
	engine := router.Setup(cfg, h, a.jwtMgr, a.rdb, a.metrics, logger)

	// 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("HTTP 服务器异常", zap.Error(err))
		return err
	case sig := <-quit:
		logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务器已关闭")
	return nil
}

// ═══════════════════════════════════════════════════════════
// 维护命令
// ═══════════════════════════════════════════════════════════

func runMaintenance(ctx context.Context, cfgPath string, fn func(context.Context, *app) error) error {
	a, err := bootstrap(cfgPath)
	if err != nil {
		return err
	}
	defer a.close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	return fn(ctx, a)
}
