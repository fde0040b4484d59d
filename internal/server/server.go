package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"nexo-backend/internal/api"
	"nexo-backend/middleware/cache"
	"nexo-backend/middleware/metrics"
	"nexo-backend/middleware/perf"
	"nexo-backend/middleware/pool"
	"nexo-backend/middleware/ratelimit"
	"nexo-backend/middleware/ratelimit/domain"
	rlinfra "nexo-backend/middleware/ratelimit/infra"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Deps são os componentes já construídos em cmd/server.
type Deps struct {
	Logger   zerolog.Logger
	Chain    *perf.Chain
	Limiter  *ratelimit.Middleware // nil desliga o rate limit
	Cache    *cache.Cache
	APITTL   time.Duration
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
	// RateStats alimenta /api/metrics/ratelimit; opcional.
	RateStats *rlinfra.MemoryStatsStore
	Pool      *pool.Pool
	Handlers  *api.Handlers
	Telegram  *api.Telegram

	ListenAddr  string
	StaticDir   string
	Tracing     bool
	ServiceName string
}

type Server struct {
	Router *chi.Mux
	deps   Deps
	srv    *http.Server
}

func New(deps Deps) *Server {
	s := &Server{Router: chi.NewRouter(), deps: deps}
	s.routes()
	s.srv = &http.Server{
		Addr:              deps.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	r := s.Router
	d := s.deps

	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(d.Chain.Handler)

	r.With(s.guard(domain.ClassDefault)).Get("/", d.Handlers.Home)
	r.With(s.guard(domain.ClassDefault)).Get("/api/health", d.Handlers.Health)

	r.Group(func(r chi.Router) {
		r.Use(s.guard(domain.ClassData))
		if d.Cache != nil {
			r.Use(d.Cache.Responses(d.APITTL))
		}
		r.Get("/api/signals", d.Handlers.Signals)
		r.Get("/api/gems", d.Handlers.Gems)
		r.Get("/api/news", d.Handlers.News)
	})

	if d.Telegram != nil {
		r.Group(func(r chi.Router) {
			r.Use(s.guard(domain.ClassAuth))
			r.Get("/api/telegram/validate/{uuid}", d.Telegram.Validate)
			r.Post("/api/telegram/uuid", d.Telegram.GenerateUUID)
		})
	}

	r.Route("/api/metrics", func(r chi.Router) {
		r.Use(s.guard(domain.ClassDefault))
		r.Method(http.MethodGet, "/", d.Metrics.SnapshotHandler())
		r.Get("/ratelimit", s.rateLimitStats)
		r.Get("/pool", s.poolStats)
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	if d.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(d.StaticDir)))
		r.Method(http.MethodGet, "/static/*", fs)
	}
}

func (s *Server) guard(class string) func(http.Handler) http.Handler {
	if s.deps.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return s.deps.Limiter.Guard(class)
}

func (s *Server) rateLimitStats(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{}
	if st := s.deps.RateStats; st != nil {
		body["total"] = st.Total()
		body["by_route"] = st.ByRoute()
		body["by_class"] = st.ByClass()
	}
	writeJSON(w, body)
}

func (s *Server) poolStats(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Pool == nil {
		writeJSON(w, map[string]any{})
		return
	}
	writeJSON(w, s.deps.Pool.Stats())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// Handler é o roteador, instrumentado com otelhttp quando o tracing está ativo.
func (s *Server) Handler() http.Handler {
	if s.deps.Tracing {
		return otelhttp.NewHandler(s.Router, s.deps.ServiceName)
	}
	return s.Router
}

// Start bloqueia até o Shutdown; ErrServerClosed não é erro.
func (s *Server) Start() error {
	s.deps.Logger.Info().Str("addr", s.srv.Addr).Msg("server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
