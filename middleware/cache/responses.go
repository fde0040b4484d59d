package cache

import (
	"encoding/json"
	"net/http"
	"time"

	"nexo-backend/middleware/httpx"
)

const HeaderCache = "X-Cache"

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
}

// Responses cacheia respostas 200 de GET por endpoint + URL completa.
// Hit responde direto do cache (X-Cache: HIT); miss executa o handler (X-Cache: MISS).
// Deve ficar depois do roteamento (chi With) para enxergar o padrão da rota.
func (c *Cache) Responses(ttl time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := ResponseKey(httpx.Endpoint(r), requestURL(r))

			if raw, ok := c.Get(ctx, key); ok {
				var cr cachedResponse
				if err := json.Unmarshal(raw, &cr); err == nil {
					c.hit()
					if cr.ContentType != "" {
						w.Header().Set("Content-Type", cr.ContentType)
					}
					w.Header().Set(HeaderCache, "HIT")
					w.WriteHeader(cr.Status)
					_, _ = w.Write(cr.Body)
					return
				}
				c.log.Warn().Str("key", key).Msg("cached response could not be decoded")
			}
			c.miss()

			rec := httpx.NewRecorder()
			next.ServeHTTP(rec, r)

			if rec.Status() == http.StatusOK {
				raw, err := json.Marshal(cachedResponse{
					Status:      rec.Status(),
					ContentType: rec.Header().Get("Content-Type"),
					Body:        rec.Body(),
				})
				if err == nil {
					err = c.Set(ctx, key, raw, ttl)
				}
				if err != nil {
					c.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
				}
			}

			rec.Header().Set(HeaderCache, "MISS")
			if err := rec.FlushTo(w); err != nil {
				c.log.Debug().Err(err).Msg("write cached response")
			}
		})
	}
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
