package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "in-memory", cfg.Storage)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, 100, cfg.Pagination.MaxPageSize)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeFile(t, `
server:
  port: 9000
  read_timeout: 3s
storage: postgres
database:
  host: db
  name: blog
  log_level: info
pagination:
  default_page_size: 20
redis:
  addr: localhost:6379
  ttl: 30s
`)
	t.Setenv("POSTS_SERVER_PORT", "9100")
	t.Setenv("POSTS_DATABASE_LOG_LEVEL", "silent")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "env overrides file")
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout, "absent keys keep defaults")
	assert.Equal(t, "postgres", cfg.Storage)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "silent", cfg.Database.LogLevel)
	assert.Equal(t, 20, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t, "host=db port=5432 user=postgres password= dbname=blog sslmode=disable", cfg.Database.ConnString())
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeFile(t, "storage: sqlite\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "pagination:\n  default_page_size: 500\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.port", envKey("POSTS_SERVER_PORT"))
	assert.Equal(t, "database.max_open_conns", envKey("POSTS_DATABASE_MAX_OPEN_CONNS"))
	assert.Equal(t, "storage", envKey("POSTS_STORAGE"))
}

func TestConnString_DSNWins(t *testing.T) {
	c := DatabaseConfig{DSN: "postgres://u:p@h/db", Host: "ignored"}
	assert.Equal(t, "postgres://u:p@h/db", c.ConnString())
}

func TestApplyLegacyEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://legacy")
	t.Setenv("PORT", "7000")

	cfg := Default()
	cfg.ApplyLegacyEnv()
	assert.Equal(t, "postgres://legacy", cfg.Database.DSN)
	assert.Equal(t, 7000, cfg.Server.Port)
}
