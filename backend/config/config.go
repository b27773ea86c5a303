package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Survey   SurveyConfig   `mapstructure:"survey"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port           int        `mapstructure:"port"`
	BaseURL        string     `mapstructure:"base_url"`
	BodyLimitBytes int64      `mapstructure:"body_limit_bytes"`
	CORS           CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// 存储驱动
const (
	StoreDriverFile     = "file"
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
)

// 写锁实现
const (
	StoreLockLocal = "local"
	StoreLockRedis = "redis"
)

// StoreConfig 记录存储配置（users / surveys 两个文档集合）
type StoreConfig struct {
	Driver      string        `mapstructure:"driver"`
	DataDir     string        `mapstructure:"data_dir"`
	UsersFile   string        `mapstructure:"users_file"`
	SurveysFile string        `mapstructure:"surveys_file"`
	SQLitePath  string        `mapstructure:"sqlite_path"`
	Lock        string        `mapstructure:"lock"`
	LockTTL     time.Duration `mapstructure:"lock_ttl"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 登录令牌配置
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	RequireToken   bool          `mapstructure:"require_token"`
	LoginRateLimit int           `mapstructure:"login_rate_limit"` // 每分钟
}

// 问卷 schema 版本
const (
	SchemaV1 = "v1"
	SchemaV2 = "v2"
)

// 重复提交策略
const (
	ResubmitUpsert = "upsert"
	ResubmitReject = "reject"
	ResubmitAppend = "append"
)

// SurveyConfig 问卷提交配置
type SurveyConfig struct {
	Schema              string   `mapstructure:"schema"`
	ExtraRequiredFields []string `mapstructure:"extra_required_fields"`
	Resubmission        string   `mapstructure:"resubmission"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"` // stdout | file
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // 天
}

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	Enabled   bool      `mapstructure:"enabled"`
	Namespace string    `mapstructure:"namespace"`
	Path      string    `mapstructure:"path"`
	Buckets   []float64 `mapstructure:"buckets"`
}

// Load 从 .env、配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 仅作为环境变量来源，不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("读取 .env 失败: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("SURVEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.base_url", "http://localhost:5001")
	v.SetDefault("server.body_limit_bytes", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{
		"http://localhost:3000", "http://localhost:3001", "http://localhost:3002", "http://localhost:*",
	})

	v.SetDefault("store.driver", StoreDriverFile)
	v.SetDefault("store.data_dir", "./data")
	v.SetDefault("store.users_file", "users.json")
	v.SetDefault("store.surveys_file", "surveys.json")
	v.SetDefault("store.sqlite_path", "./data/survey.db")
	v.SetDefault("store.lock", StoreLockLocal)
	v.SetDefault("store.lock_ttl", "10s")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "hotel_survey")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", 60)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "12h")
	v.SetDefault("auth.require_token", false)
	v.SetDefault("auth.login_rate_limit", 20)

	v.SetDefault("survey.schema", SchemaV1)
	v.SetDefault("survey.extra_required_fields", []string{})
	v.SetDefault("survey.resubmission", ResubmitUpsert)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "./logs/survey.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 7)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "hotel_survey")
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.buckets", []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5})
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	switch c.Store.Driver {
	case StoreDriverFile, StoreDriverSQLite, StoreDriverPostgres:
	default:
		return fmt.Errorf("配置校验失败: 未知的 store.driver %q", c.Store.Driver)
	}
	switch c.Store.Lock {
	case StoreLockLocal:
	case StoreLockRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("配置校验失败: store.lock=redis 需要 redis.enabled=true")
		}
	default:
		return fmt.Errorf("配置校验失败: 未知的 store.lock %q", c.Store.Lock)
	}
	switch c.Survey.Schema {
	case SchemaV1, SchemaV2:
	default:
		return fmt.Errorf("配置校验失败: 未知的 survey.schema %q", c.Survey.Schema)
	}
	switch c.Survey.Resubmission {
	case ResubmitUpsert, ResubmitReject, ResubmitAppend:
	default:
		return fmt.Errorf("配置校验失败: 未知的 survey.resubmission %q", c.Survey.Resubmission)
	}
	if c.Auth.RequireToken && len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: 启用 auth.require_token 时 auth.jwt_secret 长度不能少于 16 字符")
	}
	return nil
}
