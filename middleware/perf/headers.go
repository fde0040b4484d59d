package perf

import (
	"net/http"

	"nexo-backend/middleware/httpx"
)

const (
	CacheControlStatic = "public, max-age=31536000"
	CacheControlAPI    = "public, max-age=60"
	CacheControlHealth = "no-cache"
	CacheControlError  = "no-store"
	HeaderResponseTime = "X-Response-Time"
)

// ApplyHeaders aplica Cache-Control conforme o endpoint e os headers de segurança.
// Respostas fora de 2xx (429, 500...) de estáticos e da API não são cacheáveis.
func ApplyHeaders(h http.Header, endpoint string, status int) {
	ok := status >= 200 && status < 300
	switch {
	case !ok && (httpx.IsStatic(endpoint) || httpx.IsAPI(endpoint)):
		h.Set("Cache-Control", CacheControlError)
	case httpx.IsStatic(endpoint):
		h.Set("Cache-Control", CacheControlStatic)
	case httpx.IsHealth(endpoint):
		h.Set("Cache-Control", CacheControlHealth)
	case httpx.IsAPI(endpoint):
		h.Set("Cache-Control", CacheControlAPI)
	}

	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-XSS-Protection", "1; mode=block")
}
