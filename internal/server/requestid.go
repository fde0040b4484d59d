package server

import (
	"context"
	"net/http"
	"strings"

	"nexo-backend/middleware/httpx"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// RequestID reaproveita o X-Request-ID recebido ou gera um UUID novo.
// O id fica no context, no header da request (para o log da cadeia) e na resposta.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(httpx.HeaderRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}
		r.Header.Set(httpx.HeaderRequestID, id)
		w.Header().Set(httpx.HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
