package metrics

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const DefaultSampleCapacity = 1000

// Snapshot é a visão agregada exposta em /api/metrics.
type Snapshot struct {
	RequestsTotal      int64            `json:"requests_total"`
	RequestsByEndpoint map[string]int64 `json:"requests_by_endpoint"`
	AvgResponseTime    float64          `json:"avg_response_time"`
	ErrorsTotal        int64            `json:"errors_total"`
	CacheHitRate       float64          `json:"cache_hit_rate"`
	Uptime             float64          `json:"uptime"`
}

// Collector é seguro para uso concorrente. As amostras de tempo ficam num ring
// buffer: ao atingir a capacidade a mais antiga é descartada.
type Collector struct {
	mu         sync.Mutex
	total      int64
	errors     int64
	hits       int64
	misses     int64
	byEndpoint map[string]int64

	samples []float64
	next    int
	full    bool

	startedAt time.Time
	now       func() time.Time
	reg       prometheus.Registerer
	prom      *promMetrics
}

type promMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	errors   prometheus.Counter
	hits     prometheus.Counter
	misses   prometheus.Counter
}

type Option func(*Collector)

func WithSampleCapacity(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.samples = make([]float64, n)
		}
	}
}

// WithRegisterer liga o espelho Prometheus. Sem ele o Collector só mantém o snapshot.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Collector) { c.reg = reg }
}

func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		byEndpoint: make(map[string]int64),
		samples:    make([]float64, DefaultSampleCapacity),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.startedAt = c.now()
	if c.reg != nil {
		c.prom = newPromMetrics(c.reg)
	}
	return c
}

func newPromMetrics(reg prometheus.Registerer) *promMetrics {
	f := promauto.With(reg)
	return &promMetrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by endpoint and status",
		}, []string{"endpoint", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		errors: f.NewCounter(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total HTTP responses with status >= 400",
		}),
		hits: f.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total cache hits",
		}),
		misses: f.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total cache misses",
		}),
	}
}

// RecordRequest registra uma request concluída. status >= 400 conta como erro.
func (c *Collector) RecordRequest(endpoint string, seconds float64, status int) {
	c.mu.Lock()
	c.total++
	c.byEndpoint[endpoint]++
	if status >= 400 {
		c.errors++
	}
	c.addSample(seconds)
	c.mu.Unlock()

	if c.prom != nil {
		c.prom.requests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
		c.prom.duration.WithLabelValues(endpoint).Observe(seconds)
		if status >= 400 {
			c.prom.errors.Inc()
		}
	}
}

func (c *Collector) addSample(v float64) {
	c.samples[c.next] = v
	c.next++
	if c.next == len(c.samples) {
		c.next = 0
		c.full = true
	}
}

func (c *Collector) RecordCacheHit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	if c.prom != nil {
		c.prom.hits.Inc()
	}
}

func (c *Collector) RecordCacheMiss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	if c.prom != nil {
		c.prom.misses.Inc()
	}
}

func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		RequestsTotal:      c.total,
		RequestsByEndpoint: make(map[string]int64, len(c.byEndpoint)),
		ErrorsTotal:        c.errors,
		Uptime:             c.now().Sub(c.startedAt).Seconds(),
	}
	for k, v := range c.byEndpoint {
		s.RequestsByEndpoint[k] = v
	}

	if n := c.sampleCount(); n > 0 {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += c.samples[i]
		}
		s.AvgResponseTime = round(sum/float64(n), 3)
	}
	if lookups := c.hits + c.misses; lookups > 0 {
		s.CacheHitRate = round(float64(c.hits)/float64(lookups)*100, 2)
	}
	return s
}

func (c *Collector) sampleCount() int {
	if c.full {
		return len(c.samples)
	}
	return c.next
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
