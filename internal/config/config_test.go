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
	path := filepath.Join(t.TempDir(), "sessionscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, `
addr: ":9090"
log_level: debug
session:
  ttl: 45m
  sweep_interval: 10
  cookie_name: sid
store:
  backend: redis
  redis:
    addr: redis:6379
    db: 2
    lock: true
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 45*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 10*time.Second, cfg.Session.SweepInterval)
	assert.Equal(t, "sid", cfg.Session.CookieName)
	assert.Equal(t, StoreRedis, cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.True(t, cfg.Store.Redis.Lock)
	assert.Equal(t, "sessionscope:session:", cfg.Store.Redis.Prefix, "unset keys keep defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "session:\n  ttl: 45m\n")

	cfg, err := Load(path, []string{
		"SESSIONSCOPE_SESSION_TTL=5m",
		"SESSIONSCOPE_STORE_REDIS_ADDR=cache:6380",
		"SESSIONSCOPE_LOG_LEVEL=warn",
		"SESSIONSCOPE_SESSION_SECURE_COOKIE=true",
		"PATH=/usr/bin",
	})
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "cache:6380", cfg.Store.Redis.Addr)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.Session.SecureCookie)
}

func TestLoad_EnvBareIntegerDurationIsSeconds(t *testing.T) {
	path := writeFile(t, "session:\n  sweep_interval: 20\n")

	cfg, err := Load(path, []string{"SESSIONSCOPE_SESSION_TTL=30"})
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Session.TTL)
	assert.Equal(t, 20*time.Second, cfg.Session.SweepInterval)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeFile(t, "store:\n  backend: etcd\n"), nil)
	assert.ErrorContains(t, err, "unknown store backend")

	_, err = Load(writeFile(t, "bogus: 1\n"), nil)
	assert.ErrorContains(t, err, "invalid config")

	_, err = Load(writeFile(t, "addr: [unclosed\n"), nil)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestEnvPath(t *testing.T) {
	assert.Equal(t, []string{"session", "ttl"}, envPath("SESSION_TTL"))
	assert.Equal(t, []string{"store", "redis", "addr"}, envPath("STORE_REDIS_ADDR"))
	assert.Equal(t, []string{"log_level"}, envPath("LOG_LEVEL"))
	assert.Equal(t, []string{"session", "sweep_interval"}, envPath("SESSION_SWEEP_INTERVAL"))
}
