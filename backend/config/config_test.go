package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	require.Equal(t, 5001, cfg.Server.Port)
	require.Equal(t, StoreDriverFile, cfg.Store.Driver)
	require.Equal(t, "users.json", cfg.Store.UsersFile)
	require.Equal(t, "surveys.json", cfg.Store.SurveysFile)
	require.Equal(t, 10*time.Second, cfg.Store.LockTTL)
	require.Equal(t, 12*time.Hour, cfg.Auth.AccessTokenTTL)
	require.False(t, cfg.Auth.RequireToken)
	require.Equal(t, SchemaV1, cfg.Survey.Schema)
	require.Equal(t, ResubmitUpsert, cfg.Survey.Resubmission)
	require.Contains(t, cfg.Server.CORS.AllowOrigins, "http://localhost:3000")
	require.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 7000
survey:
  schema: v2
  resubmission: reject
  extra_required_fields: [starRating]
store:
  driver: sqlite
  sqlite_path: /tmp/survey.db
`)
	t.Setenv("SURVEY_SERVER_PORT", "7100")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 7100, cfg.Server.Port)
	require.Equal(t, SchemaV2, cfg.Survey.Schema)
	require.Equal(t, ResubmitReject, cfg.Survey.Resubmission)
	require.Equal(t, []string{"starRating"}, cfg.Survey.ExtraRequiredFields)
	require.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
	require.Equal(t, "/tmp/survey.db", cfg.Store.SQLitePath)
}

func TestLoad_InvalidFile(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unterminated\n"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 5001},
			Store:  StoreConfig{Driver: StoreDriverFile, Lock: StoreLockLocal},
			Survey: SurveyConfig{Schema: SchemaV1, Resubmission: ResubmitUpsert},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"默认有效", func(*Config) {}, false},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, true},
		{"未知驱动", func(c *Config) { c.Store.Driver = "mongo" }, true},
		{"redis 锁未启用 redis", func(c *Config) { c.Store.Lock = StoreLockRedis }, true},
		{"redis 锁已启用 redis", func(c *Config) {
			c.Store.Lock = StoreLockRedis
			c.Redis.Enabled = true
		}, false},
		{"未知 schema", func(c *Config) { c.Survey.Schema = "v3" }, true},
		{"未知重复提交策略", func(c *Config) { c.Survey.Resubmission = "merge" }, true},
		{"强制令牌但密钥过短", func(c *Config) {
			c.Auth.RequireToken = true
			c.Auth.JWTSecret = "short"
		}, true},
		{"强制令牌且密钥足够", func(c *Config) {
			c.Auth.RequireToken = true
			c.Auth.JWTSecret = "0123456789abcdef"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable", Timezone: "UTC"}
	require.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable TimeZone=UTC", c.DSN())
}
