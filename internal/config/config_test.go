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
	uploads := filepath.Join(t.TempDir(), "uploads")
	dir := writeConfig(t, `
server:
  port: "9090"
  mode: debug
jwt:
  secret: short
  expire_hours: 12
storage:
  type: local
  local_path: `+uploads+`
planner:
  default_subjects: [국어, 수학]
  idempotency_ttl_seconds: 60
  timezone: Asia/Seoul
cors:
  allowed_origins: ["http://localhost:5173"]
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, dir, cfg.ConfigDir)
	assert.Equal(t, 12*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, "planner_session", cfg.JWT.CookieName)
	assert.Equal(t, time.Minute, cfg.Planner.IdempotencyTTL)
	assert.Equal(t, []string{"국어", "수학"}, cfg.Planner.DefaultSubjects)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 600, cfg.RateLimit.MaxRequests)
	assert.DirExists(t, uploads)
}

func TestLoadConfigRejectsWeakSecretInRelease(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: release
jwt:
  secret: too-short
storage:
  type: minio
`)
	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret is too short")
}

func TestLoadConfigRejectsUnknownTimezone(t *testing.T) {
	dir := writeConfig(t, `
storage:
  type: minio
planner:
  timezone: Mars/Olympus
`)
	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}
