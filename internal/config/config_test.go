package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionDuration)
	assert.Equal(t, 5, cfg.Auth.LoginAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LoginWindow)
	assert.Equal(t, int64(10<<20), cfg.Import.MaxUploadBytes)
	assert.Equal(t, "admin", cfg.Bootstrap.AdminUsername)
	assert.Empty(t, cfg.Bootstrap.AdminPassword)
}

func TestLoadFileWithExpansion(t *testing.T) {
	t.Setenv("TEST_REDIS_HOST", "cache.internal")
	path := writeConfig(t, `
server:
  port: 8080
  allowed_origins: ["https://club.example"]
storage:
  type: Redis
  redis:
    url: redis://${TEST_REDIS_HOST}:6379
auth:
  session_duration: 2h
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"https://club.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, StorageRedis, cfg.Storage.Type)
	assert.Equal(t, "redis://cache.internal:6379", cfg.Storage.Redis.URL)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionDuration)
	assert.Equal(t, "roster", cfg.Storage.Redis.KeyPrefix)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8080\n")
	t.Setenv("ROSTER_PORT", "9090")
	t.Setenv("ROSTER_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("ROSTER_ADMIN_PASSWORD", "Secr3tPass")
	t.Setenv("ROSTER_LOGIN_WINDOW", "1m")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "Secr3tPass", cfg.Bootstrap.AdminPassword)
	assert.Equal(t, time.Minute, cfg.Auth.LoginWindow)
}

func TestEnvParseErrors(t *testing.T) {
	t.Setenv("ROSTER_PORT", "not-a-number")
	t.Setenv("ROSTER_SESSION_DURATION", "forever")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ROSTER_PORT")
	assert.Contains(t, err.Error(), "ROSTER_SESSION_DURATION")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown storage", func(c *Config) { c.Storage.Type = "mongo" }, `unknown storage type "mongo"`},
		{"redis without url", func(c *Config) { c.Storage.Type = StorageRedis }, "storage.redis.url"},
		{"postgres without url", func(c *Config) { c.Storage.Type = StoragePostgres }, "storage.postgres.url"},
		{"postgres with url", func(c *Config) {
			c.Storage.Type = StoragePostgres
			c.Storage.Postgres.URL = "postgres://localhost/roster"
		}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	level, err := LogConfig{Level: "debug"}.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = LogConfig{Level: "WARN"}.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}
