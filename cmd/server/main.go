package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nexo-backend/internal/api"
	"nexo-backend/internal/config"
	"nexo-backend/internal/logging"
	"nexo-backend/internal/server"
	"nexo-backend/internal/telemetry"
	"nexo-backend/middleware/cache"
	cachedomain "nexo-backend/middleware/cache/domain"
	cacheinfra "nexo-backend/middleware/cache/infra"
	"nexo-backend/middleware/metrics"
	"nexo-backend/middleware/perf"
	"nexo-backend/middleware/pool"
	"nexo-backend/middleware/ratelimit"
	"nexo-backend/middleware/ratelimit/domain"
	rlinfra "nexo-backend/middleware/ratelimit/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config error")
	}

	logger := logging.Setup(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Output: os.Stderr})

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Tracing.Enabled {
		shutdownTracer, err := telemetry.InitTracer(cfg.Tracing.ServiceName, nil, logger)
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer func() {
			sctx, c := context.WithTimeout(context.Background(), 5*time.Second)
			defer c()
			_ = shutdownTracer(sctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(
		metrics.WithSampleCapacity(cfg.Metrics.SampleCapacity),
		metrics.WithRegisterer(reg),
	)

	store, err := newCacheStore(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	c := cache.New(store,
		cache.WithDefaultTTL(cfg.Cache.DefaultTTL),
		cache.WithPrefix("nexo"),
		cache.WithLogger(logging.NewLogger("cache")),
		cache.WithHitRecorder(collector),
	)
	defer func() { _ = c.Close() }()

	p := pool.New(pool.SQLiteDialer(cfg.Database.Path), cfg.Database.MaxConnections,
		pool.WithLogger(logging.NewLogger("pool")))
	defer func() { _ = p.Close() }()

	if cfg.Database.OptimizeOnStart {
		p.Optimize(ctx)
	}

	tg := api.NewTelegram(p, c, cfg.Cache.DefaultTTL, logging.NewLogger("telegram"))
	if err := tg.Seed(ctx); err != nil {
		return fmt.Errorf("seed telegram data: %w", err)
	}

	var limiter *ratelimit.Middleware
	memStats := rlinfra.NewMemoryStatsStore(rlinfra.WithTrackKeys(cfg.RateLimit.Stats.TrackKeys))
	if cfg.RateLimit.Enabled {
		rlStore := rlinfra.NewStore(
			rlinfra.WithCleanupEvery(cfg.RateLimit.CleanupEvery),
			rlinfra.WithMaxKeys(cfg.RateLimit.MaxKeys),
		)
		rlStore.StartJanitor(ctx)

		stats, closeStats, err := newStatsStore(ctx, cfg.RateLimit.Stats, memStats)
		if err != nil {
			return err
		}
		defer closeStats()

		limiter = ratelimit.New(ratelimit.Options{
			Store:               rlStore,
			Stats:               stats,
			Classes:             classesFromConfig(cfg.RateLimit.Classes),
			KeyHeader:           cfg.RateLimit.KeyHeader,
			TrustXForwardedFor:  cfg.RateLimit.TrustXFF,
			AddRateLimitHeaders: cfg.RateLimit.AddHeaders,
			Logger:              logging.NewLogger("ratelimit"),
		})
	}

	srv := server.New(server.Deps{
		Logger: logger,
		Chain: &perf.Chain{
			Compressor: perf.Compressor{MinSize: cfg.Compression.MinSize, Level: cfg.Compression.Level},
			Metrics:    collector,
			Logger:     logging.NewLogger("http"),
		},
		Limiter:     limiter,
		Cache:       c,
		APITTL:      cfg.Cache.APITTL,
		Metrics:     collector,
		Gatherer:    reg,
		RateStats:   memStats,
		Pool:        p,
		Handlers:    api.NewHandlers(nil),
		Telegram:    tg,
		ListenAddr:  cfg.Server.ListenAddr,
		StaticDir:   cfg.Server.StaticDir,
		Tracing:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
	})

	logger.Info().
		Str("cache", cfg.Cache.Backend).
		Bool("ratelimit", cfg.RateLimit.Enabled).
		Int("max_connections", cfg.Database.MaxConnections).
		Int("compress_min_size", cfg.Compression.MinSize).
		Msg("nexo-backend starting")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func newCacheStore(ctx context.Context, cfg config.CacheConfig) (cachedomain.Store, error) {
	switch cfg.Backend {
	case config.CacheBigCache:
		life := cfg.DefaultTTL
		if cfg.APITTL > life {
			life = cfg.APITTL
		}
		return cacheinfra.NewBigCacheStore(ctx, life, cfg.BigCacheMB)

	case config.CacheRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPasswd,
			DB:       cfg.RedisDB,
		})
		if err := ping(ctx, rdb); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis cache ping: %w", err)
		}
		return cacheinfra.NewRedisStore(rdb,
			cacheinfra.WithRedisPrefix(cfg.RedisPrefix),
			cacheinfra.WithOwnedClient(),
		), nil

	default:
		return cacheinfra.NewMemoryStore(cfg.MaxEntries)
	}
}

// newStatsStore sempre grava em memória; com redis_addr também grava no Redis.
func newStatsStore(ctx context.Context, cfg config.RateLimitStatsConfig, mem *rlinfra.MemoryStatsStore) (domain.StatsStore, func(), error) {
	if cfg.RedisAddr == "" {
		return mem, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err := ping(ctx, rdb); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis stats ping: %w", err)
	}

	redisStats := rlinfra.NewRedisStatsStore(
		rdb,
		rlinfra.WithStatsPrefix(cfg.Prefix),
		rlinfra.WithStatsTTL(cfg.TTL),
		rlinfra.WithStatsBucket(cfg.Bucket),
		rlinfra.WithStatsTrackKeys(cfg.TrackKeys),
	)
	return rlinfra.MultiStatsStore{mem, redisStats}, func() { _ = rdb.Close() }, nil
}

func ping(ctx context.Context, rdb *redis.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err := rdb.Ping(pingCtx).Result()
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("timeout after 2s: %w", err)
	}
	return err
}

func classesFromConfig(in map[string]config.ClassConfig) domain.Classes {
	out := make(domain.Classes, len(in))
	for name, c := range in {
		out[name] = domain.LimitClass{Name: name, MaxRequests: c.MaxRequests, Window: c.Window}
	}
	return out
}
