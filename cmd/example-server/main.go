package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nexo-backend/internal/logging"
	"nexo-backend/middleware/cache"
	cacheinfra "nexo-backend/middleware/cache/infra"
	"nexo-backend/middleware/httpx"
	"nexo-backend/middleware/metrics"
	"nexo-backend/middleware/perf"
	"nexo-backend/middleware/ratelimit"
	"nexo-backend/middleware/ratelimit/domain"
	"nexo-backend/middleware/ratelimit/infra"
)

func main() {
	// Exemplo: a cadeia de performance em volta de um ServeMux comum, sem chi.
	// O endpoint cai para o path da URL.
	logger := logging.Setup(logging.Config{Level: "debug", Pretty: true})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := infra.NewStore(infra.WithCleanupEvery(time.Minute))
	store.StartJanitor(ctx)

	limiter := ratelimit.New(ratelimit.Options{
		Store:               store,
		Classes:             domain.Classes{domain.ClassDefault: {Name: domain.ClassDefault, MaxRequests: 5, Window: 10 * time.Second}},
		KeyHeader:           "X-Api-Key", // ou vazio para usar IP
		TrustXForwardedFor:  true,
		AddRateLimitHeaders: true,
		Logger:              logging.NewLogger("ratelimit"),
	})

	collector := metrics.NewCollector()

	mem, err := cacheinfra.NewMemoryStore(1000)
	if err != nil {
		logger.Fatal().Err(err).Msg("cache init")
	}
	c := cache.New(mem, cache.WithHitRecorder(collector), cache.WithLogger(logging.NewLogger("cache")))
	defer func() { _ = c.Close() }()

	mux := http.NewServeMux()
	mux.Handle("/", limiter.Guard(domain.ClassDefault)(c.Responses(30*time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	}))))
	mux.Handle("/api/metrics", collector.SnapshotHandler())

	chain := &perf.Chain{
		Compressor: perf.Compressor{MinSize: 1000},
		Metrics:    collector,
		Logger:     logging.NewLogger("http"),
		Endpoint:   httpx.RoutedEndpoint,
	}

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           chain.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("example server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server error")
	}
}
