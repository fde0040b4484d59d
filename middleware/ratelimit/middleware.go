package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"nexo-backend/middleware/httpx"
	"nexo-backend/middleware/ratelimit/application"
	"nexo-backend/middleware/ratelimit/domain"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	RejectError   = "Rate limit exceeded"
	RejectMessage = "Muitas requisições. Tente novamente mais tarde."
)

type KeyFunc func(r *http.Request) string

type Options struct {
	Store               domain.LimiterStore
	Stats               domain.StatsStore
	Classes             domain.Classes
	KeyFn               KeyFunc
	KeyHeader           string
	TrustXForwardedFor  bool
	RetryAfter          time.Duration
	AddRateLimitHeaders bool
	Logger              zerolog.Logger
}

// Middleware guarda o serviço de decisão e gera um Guard por classe de limite.
type Middleware struct {
	svc     application.Service
	stats   domain.StatsStore
	keyFn   KeyFunc
	headers bool
	log     zerolog.Logger
	// evita inundar o log quando um cliente insiste depois do 429
	logSampler *rate.Sometimes
}

type rejectBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			// pega o primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				parts := strings.Split(xff, ",")
				if len(parts) > 0 {
					ip := strings.TrimSpace(parts[0])
					if ip != "" {
						return ip
					}
				}
			}
		}

		// fallback: RemoteAddr
		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		// sem identificação: todos caem no mesmo bucket ""
		return strings.TrimSpace(r.RemoteAddr)
	}
}

func New(opts Options) *Middleware {
	if opts.RetryAfter == 0 {
		opts.RetryAfter = 1 * time.Second
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.Classes == nil {
		opts.Classes = domain.DefaultClasses()
	}

	return &Middleware{
		svc: application.Service{
			Store:      opts.Store,
			Classes:    opts.Classes,
			RetryAfter: opts.RetryAfter,
		},
		stats:      opts.Stats,
		keyFn:      opts.KeyFn,
		headers:    opts.AddRateLimitHeaders,
		log:        opts.Logger,
		logSampler: &rate.Sometimes{Interval: time.Second},
	}
}

// Guard aplica a classe de limite informada (nome desconhecido usa a default).
func (m *Middleware) Guard(className string) func(next http.Handler) http.Handler {
	class := m.svc.Classes.Resolve(className)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := m.keyFn(r)

			dec := m.svc.Decide(domain.Key(key), class.Name)
			if m.stats != nil {
				_ = m.stats.Record(r.Context(), domain.StatsEvent{
					Key:     domain.Key(key),
					Class:   class.Name,
					Allowed: dec.Allowed,
					Method:  r.Method,
					Path:    httpx.Endpoint(r),
					At:      time.Now(),
				})
			}

			if m.headers {
				w.Header().Set("X-RateLimit-Class", class.Name)
				w.Header().Set("X-RateLimit-Limit", formatInt(class.MaxRequests))
				w.Header().Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
				w.Header().Set("X-RateLimit-Window", formatSeconds(class.Window))
			}

			if !dec.Allowed {
				m.logSampler.Do(func() {
					m.log.Warn().
						Str("key", key).
						Str("class", class.Name).
						Str("path", r.URL.Path).
						Dur("retry_after", dec.RetryAfter).
						Msg("rate limit exceeded")
				})
				writeRejection(w, dec.RetryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeRejection(w http.ResponseWriter, retryAfter time.Duration) {
	w.Header().Set("Retry-After", formatInt(retryAfterSeconds(retryAfter)))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(rejectBody{Error: RejectError, Message: RejectMessage})
}

