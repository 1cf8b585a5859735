package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":5000", cfg.Listen)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 50, cfg.Cache.Capacity)
	assert.Equal(t, 250, cfg.Budget.Limit)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Assistant.Model)
	assert.Equal(t, 1000, cfg.Assistant.RecommendMaxTokens)
	assert.Equal(t, 300, cfg.Assistant.ChatMaxTokens)
	assert.Empty(t, cfg.Assistant.URL, "providers pick their own endpoint")
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_API_KEY", "sk-test-123")
	t.Setenv("TEST_JWT_SECRET", "s3cret")

	path := writeConfig(t, `
listen: ":9090"
db_path: "test.db"
log:
  level: debug
  format: console
assistant:
  provider: anthropic
  url: https://api.anthropic.com
  api_key: ${TEST_API_KEY}
  model: claude-3-haiku
  timeout: 10s
cache:
  ttl: 30m
  capacity: 20
budget:
  limit: 5
auth:
  jwt_secret: ${TEST_JWT_SECRET}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "anthropic", cfg.Assistant.Provider)
	assert.Equal(t, "sk-test-123", cfg.Assistant.APIKey, "env var not expanded")
	assert.Equal(t, 10*time.Second, cfg.Assistant.Timeout)
	assert.Equal(t, 0.7, cfg.Assistant.Temperature, "unset fields keep defaults")
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 20, cfg.Cache.Capacity)
	assert.Equal(t, 5, cfg.Budget.Limit)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, `
assistant:
  provider: carrier-pigeon
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadRejectsZeroBudget(t *testing.T) {
	path := writeConfig(t, `
budget:
  limit: 0
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
