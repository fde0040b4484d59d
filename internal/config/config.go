// Package config carrega a configuração do backend: defaults, arquivo YAML opcional
// e variáveis de ambiente NEXO_* (que sobrescrevem o arquivo).
//
// Convenção das variáveis: NEXO_<SECAO>__<CHAVE>, por exemplo
// NEXO_CACHE__DEFAULT_TTL=5m ou NEXO_RATELIMIT__CLASSES__AUTH__MAX_REQUESTS=10.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix      = "NEXO_"
	EnvConfigFile  = "NEXO_CONFIG_FILE"
	DefaultFile    = "config.yaml"
	CacheMemory    = "memory"
	CacheBigCache  = "bigcache"
	CacheRedis     = "redis"
	defaultDBPath  = "nexo.db"
	defaultListen  = ":5000"
	defaultStatics = "static"
)

type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Log         LogConfig         `koanf:"log"`
	Cache       CacheConfig       `koanf:"cache"`
	Compression CompressionConfig `koanf:"compression"`
	Database    DatabaseConfig    `koanf:"database"`
	RateLimit   RateLimitConfig   `koanf:"ratelimit"`
	Metrics     MetricsConfig     `koanf:"metrics"`
	Tracing     TracingConfig     `koanf:"tracing"`
}

type ServerConfig struct {
	ListenAddr      string        `koanf:"listen_addr"`
	StaticDir       string        `koanf:"static_dir"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

type CacheConfig struct {
	// Backend: memory (padrão), bigcache ou redis.
	Backend     string        `koanf:"backend"`
	DefaultTTL  time.Duration `koanf:"default_ttl"`
	APITTL      time.Duration `koanf:"api_ttl"`
	MaxEntries  int           `koanf:"max_entries"`
	BigCacheMB  int           `koanf:"bigcache_max_mb"`
	RedisAddr   string        `koanf:"redis_addr"`
	RedisDB     int           `koanf:"redis_db"`
	RedisPrefix string        `koanf:"redis_prefix"`
	RedisPasswd string        `koanf:"redis_password"`
}

type CompressionConfig struct {
	MinSize int `koanf:"min_size"`
	Level   int `koanf:"level"`
}

type DatabaseConfig struct {
	Path            string `koanf:"path"`
	MaxConnections  int    `koanf:"max_connections"`
	OptimizeOnStart bool   `koanf:"optimize_on_start"`
}

type ClassConfig struct {
	MaxRequests int           `koanf:"max_requests"`
	Window      time.Duration `koanf:"window"`
}

type RateLimitStatsConfig struct {
	RedisAddr string        `koanf:"redis_addr"`
	RedisDB   int           `koanf:"redis_db"`
	Prefix    string        `koanf:"prefix"`
	TTL       time.Duration `koanf:"ttl"`
	Bucket    string        `koanf:"bucket"`
	TrackKeys bool          `koanf:"track_keys"`
}

type RateLimitConfig struct {
	Enabled      bool                   `koanf:"enabled"`
	KeyHeader    string                 `koanf:"key_header"`
	TrustXFF     bool                   `koanf:"trust_xff"`
	AddHeaders   bool                   `koanf:"add_headers"`
	CleanupEvery time.Duration          `koanf:"cleanup_every"`
	MaxKeys      int                    `koanf:"max_keys"`
	Classes      map[string]ClassConfig `koanf:"classes"`
	Stats        RateLimitStatsConfig   `koanf:"stats"`
}

type MetricsConfig struct {
	SampleCapacity int `koanf:"sample_capacity"`
}

type TracingConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

func defaults() map[string]any {
	return map[string]any{
		"server.listen_addr":                     defaultListen,
		"server.static_dir":                      defaultStatics,
		"server.shutdown_timeout":                10 * time.Second,
		"log.level":                              "info",
		"log.pretty":                             false,
		"cache.backend":                          CacheMemory,
		"cache.default_ttl":                      300 * time.Second,
		"cache.api_ttl":                          60 * time.Second,
		"cache.max_entries":                      10000,
		"cache.bigcache_max_mb":                  64,
		"cache.redis_prefix":                     "nexo:cache",
		"compression.min_size":                  1000,
		"compression.level":                     -1,
		"database.path":                          defaultDBPath,
		"database.max_connections":               10,
		"database.optimize_on_start":             true,
		"ratelimit.enabled":                      true,
		"ratelimit.cleanup_every":                2 * time.Minute,
		"ratelimit.max_keys":                     100000,
		"ratelimit.classes.default.max_requests": 100,
		"ratelimit.classes.default.window":       time.Hour,
		"ratelimit.classes.auth.max_requests":    10,
		"ratelimit.classes.auth.window":          5 * time.Minute,
		"ratelimit.classes.data.max_requests":    1000,
		"ratelimit.classes.data.window":          time.Hour,
		"ratelimit.stats.prefix":                 "ratelimit:stats",
		"ratelimit.stats.ttl":                    24 * time.Hour,
		"ratelimit.stats.bucket":                 "minute",
		"metrics.sample_capacity":                1000,
		"tracing.service_name":                   "nexo-backend",
	}
}

// Load lê .env (se existir), o arquivo apontado por NEXO_CONFIG_FILE (ou config.yaml)
// e por fim as variáveis NEXO_*.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv(EnvConfigFile)
	if path == "" {
		path = DefaultFile
	}
	return LoadFrom(path)
}

// LoadFrom é Load sem o .env e com caminho explícito. Arquivo ausente não é erro.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	for key, v := range defaults() {
		if !k.Exists(key) {
			if err := k.Set(key, v); err != nil {
				return nil, fmt.Errorf("set default %s: %w", key, err)
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheMemory, CacheBigCache:
	case CacheRedis:
		if strings.TrimSpace(c.Cache.RedisAddr) == "" {
			return errors.New("cache.redis_addr is required when cache.backend=redis")
		}
	default:
		return fmt.Errorf("cache.backend must be one of memory, bigcache, redis (got %q)", c.Cache.Backend)
	}
	if c.Cache.DefaultTTL <= 0 || c.Cache.APITTL <= 0 {
		return errors.New("cache ttls must be > 0")
	}
	if c.Cache.MaxEntries <= 0 {
		return errors.New("cache.max_entries must be > 0")
	}
	if c.Compression.MinSize < 0 {
		return errors.New("compression.min_size must be >= 0")
	}
	if c.Database.MaxConnections <= 0 {
		return errors.New("database.max_connections must be > 0")
	}
	if c.Metrics.SampleCapacity <= 0 {
		return errors.New("metrics.sample_capacity must be > 0")
	}
	if _, ok := c.RateLimit.Classes["default"]; !ok {
		return errors.New("ratelimit.classes.default is required")
	}
	for name, cl := range c.RateLimit.Classes {
		if cl.MaxRequests <= 0 {
			return fmt.Errorf("ratelimit.classes.%s.max_requests must be > 0", name)
		}
		if cl.Window <= 0 {
			return fmt.Errorf("ratelimit.classes.%s.window must be > 0", name)
		}
	}
	return nil
}
