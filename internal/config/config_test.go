package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfig(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
  mode: debug
database:
  driver: sqlite
  path: test.db
jwt:
  secret: short-secret
  expire_hours: 2
storage:
  type: minio
redis:
  enabled: true
  host: cache
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "test.db", cfg.Database.Path)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpireTime)
	assert.Equal(t, "short-secret", cfg.JWT.RefreshSecret)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 5, cfg.Jobs.LeaderboardRefreshMinutes)
	assert.Equal(t, 60, cfg.Storage.URLExpireMinutes)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: mysql
  host: localhost
jwt:
  secret: short-secret
storage:
  type: oss
`)
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}

func TestLoadConfigRejects(t *testing.T) {
	cases := map[string]string{
		"short secret in release": `
server:
  mode: release
jwt:
  secret: too-short
storage:
  type: oss
`,
		"missing secret": `
storage:
  type: oss
`,
		"negative refresh interval": `
jwt:
  secret: short-secret
storage:
  type: oss
jobs:
  leaderboard_refresh_minutes: -1
`,
		"unknown driver": `
database:
  driver: oracle
jwt:
  secret: short-secret
storage:
  type: oss
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
