package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nexo-backend/internal/api"
	"nexo-backend/middleware/cache"
	cacheinfra "nexo-backend/middleware/cache/infra"
	"nexo-backend/middleware/metrics"
	"nexo-backend/middleware/perf"
	"nexo-backend/middleware/pool"
	"nexo-backend/middleware/ratelimit"
	"nexo-backend/middleware/ratelimit/domain"
	rlinfra "nexo-backend/middleware/ratelimit/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srv       *Server
	collector *metrics.Collector
}

func newFixture(t *testing.T, classes domain.Classes) fixture {
	t.Helper()

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(metrics.WithRegisterer(reg))

	store, err := cacheinfra.NewMemoryStore(100)
	require.NoError(t, err)
	c := cache.New(store, cache.WithHitRecorder(collector))

	p := pool.New(pool.SQLiteDialer(filepath.Join(t.TempDir(), "srv.db")), 2)
	t.Cleanup(func() { _ = p.Close() })
	tg := api.NewTelegram(p, c, time.Minute, zerolog.Nop())
	require.NoError(t, tg.Seed(context.Background()))

	stats := rlinfra.NewMemoryStatsStore()
	limiter := ratelimit.New(ratelimit.Options{
		Store:   rlinfra.NewStore(),
		Stats:   stats,
		Classes: classes,
	})

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "app.js"), []byte("console.log(1)"), 0o644))

	srv := New(Deps{
		Logger:    zerolog.Nop(),
		Chain:     &perf.Chain{Compressor: perf.Compressor{MinSize: 1000}, Metrics: collector, Logger: zerolog.Nop()},
		Limiter:   limiter,
		Cache:     c,
		APITTL:    time.Minute,
		Metrics:   collector,
		Gatherer:  reg,
		RateStats: stats,
		Pool:      p,
		Handlers:  api.NewHandlers(nil),
		Telegram:  tg,
		StaticDir: staticDir,
	})
	return fixture{srv: srv, collector: collector}
}

func (f fixture) do(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "192.0.2.1:4000"
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_DataRoutesAreCached(t *testing.T) {
	f := newFixture(t, domain.DefaultClasses())

	first := f.do(http.MethodGet, "/api/signals")
	second := f.do(http.MethodGet, "/api/signals")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, perf.CacheControlAPI, second.Header().Get("Cache-Control"))
	assert.NotEmpty(t, second.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, second.Header().Get(perf.HeaderResponseTime))

	snap := f.collector.Snapshot()
	assert.Equal(t, int64(2), snap.RequestsByEndpoint["/api/signals"])
	assert.Equal(t, 50.0, snap.CacheHitRate)
}

func TestServer_HealthIsNotCached(t *testing.T) {
	f := newFixture(t, domain.DefaultClasses())

	w := f.do(http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Cache"))
	assert.Equal(t, perf.CacheControlHealth, w.Header().Get("Cache-Control"))
}

func TestServer_AuthClassRejectsWith429(t *testing.T) {
	classes := domain.DefaultClasses()
	classes[domain.ClassAuth] = domain.LimitClass{Name: domain.ClassAuth, MaxRequests: 2, Window: time.Minute}
	f := newFixture(t, classes)

	var codes []int
	for i := 0; i < 3; i++ {
		codes = append(codes, f.do(http.MethodGet, "/api/telegram/validate/CRP-KTT5GM69-120S-9C19").Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	// outras classes não são afetadas
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/news").Code)

	snap := f.collector.Snapshot()
	assert.Equal(t, int64(1), snap.ErrorsTotal)

	w := f.do(http.MethodGet, "/api/metrics/ratelimit")
	var body struct {
		ByClass map[string]rlinfra.Counters `json:"by_class"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.ByClass[domain.ClassAuth].Denied)
}

func TestServer_GenerateUUID(t *testing.T) {
	f := newFixture(t, domain.DefaultClasses())

	w := f.do(http.MethodPost, "/api/telegram/uuid")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bot_username":"@nexocrypto_trading_bot"`)
}

func TestServer_MetricsEndpoints(t *testing.T) {
	f := newFixture(t, domain.DefaultClasses())
	f.do(http.MethodGet, "/api/gems")

	w := f.do(http.MethodGet, "/api/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	var snap metrics.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.GreaterOrEqual(t, snap.RequestsTotal, int64(1))

	prom := f.do(http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, prom.Code)
	assert.True(t, strings.Contains(prom.Body.String(), "http_requests_total"))

	pl := f.do(http.MethodGet, "/api/metrics/pool")
	require.Equal(t, http.StatusOK, pl.Code)
	assert.Contains(t, pl.Body.String(), `"created"`)
}

func TestServer_StaticFiles(t *testing.T) {
	f := newFixture(t, domain.DefaultClasses())

	w := f.do(http.MethodGet, "/static/app.js")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log(1)", w.Body.String())
	assert.Equal(t, perf.CacheControlStatic, w.Header().Get("Cache-Control"))
}

func TestServer_RequestIDIsPropagated(t *testing.T) {
	f := newFixture(t, domain.DefaultClasses())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}
