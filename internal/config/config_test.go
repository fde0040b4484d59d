package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Server.ListenAddr)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, 300*time.Second, cfg.Cache.DefaultTTL)
	assert.Equal(t, 1000, cfg.Compression.MinSize)
	assert.Equal(t, 10, cfg.Database.MaxConnections)
	assert.Equal(t, 1000, cfg.Metrics.SampleCapacity)

	require.Contains(t, cfg.RateLimit.Classes, "auth")
	assert.Equal(t, ClassConfig{MaxRequests: 10, Window: 5 * time.Minute}, cfg.RateLimit.Classes["auth"])
	assert.Equal(t, ClassConfig{MaxRequests: 100, Window: time.Hour}, cfg.RateLimit.Classes["default"])
	assert.Equal(t, ClassConfig{MaxRequests: 1000, Window: time.Hour}, cfg.RateLimit.Classes["data"])
}

func TestLoadFrom_FileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`
server:
  listen_addr: ":9090"
cache:
  default_ttl: 30s
ratelimit:
  classes:
    auth:
      max_requests: 3
      window: 5s
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	t.Setenv("NEXO_SERVER__LISTEN_ADDR", ":7070")
	t.Setenv("NEXO_COMPRESSION__MIN_SIZE", "2048")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.ListenAddr)
	assert.Equal(t, 30*time.Second, cfg.Cache.DefaultTTL)
	assert.Equal(t, 2048, cfg.Compression.MinSize)
	assert.Equal(t, ClassConfig{MaxRequests: 3, Window: 5 * time.Second}, cfg.RateLimit.Classes["auth"])
	// classes não citadas no arquivo continuam com o default
	assert.Equal(t, 1000, cfg.RateLimit.Classes["data"].MaxRequests)
}

func TestLoadFrom_RedisBackendRequiresAddr(t *testing.T) {
	t.Setenv("NEXO_CACHE__BACKEND", "redis")

	_, err := LoadFrom("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.redis_addr")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadFrom("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"zero ttl", func(c *Config) { c.Cache.DefaultTTL = 0 }},
		{"zero pool", func(c *Config) { c.Database.MaxConnections = 0 }},
		{"negative min size", func(c *Config) { c.Compression.MinSize = -1 }},
		{"zero samples", func(c *Config) { c.Metrics.SampleCapacity = 0 }},
		{"class without window", func(c *Config) {
			c.RateLimit.Classes["auth"] = ClassConfig{MaxRequests: 1}
		}},
		{"missing default class", func(c *Config) { delete(c.RateLimit.Classes, "default") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
