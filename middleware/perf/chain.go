package perf

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"nexo-backend/middleware/httpx"

	"github.com/rs/zerolog"
)

// RequestRecorder recebe o resultado de cada request (normalmente o metrics.Collector).
type RequestRecorder interface {
	RecordRequest(endpoint string, seconds float64, status int)
}

type Chain struct {
	Compressor Compressor
	Metrics    RequestRecorder
	Logger     zerolog.Logger
	// Now é o relógio do Timer; nil usa time.Now.
	Now func() time.Time
	// Endpoint identifica a rota nas métricas e nos headers; nil usa httpx.Endpoint.
	// Atrás de um http.ServeMux use httpx.RoutedEndpoint.
	Endpoint func(*http.Request) string
}

type errorBody struct {
	Error string `json:"error"`
}

// Handler envolve next: a resposta é bufferizada e só vai para o cliente depois
// de comprimida, com headers, X-Response-Time e métricas registradas.
//
// Com chi, use como r.Use(chain.Handler) para que o padrão da rota esteja
// disponível no final da request.
func (c *Chain) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, timer := StartTimer(r.Context(), c.Now)
		r = r.WithContext(ctx)

		rec := httpx.NewRecorder()
		c.invoke(next, rec, r)
		c.finalize(w, r, rec, timer)
	})
}

func (c *Chain) invoke(next http.Handler, rec *httpx.Recorder, r *http.Request) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		if v == http.ErrAbortHandler {
			panic(v)
		}
		c.Logger.Error().
			Interface("panic", v).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("handler panic")

		rec.Reset()
		rec.Header().Set("Content-Type", "application/json")
		rec.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(rec).Encode(errorBody{Error: "Internal server error"})
	}()

	next.ServeHTTP(rec, r)
}

func (c *Chain) finalize(w http.ResponseWriter, r *http.Request, rec *httpx.Recorder, timer *Timer) {
	endpoint := c.endpoint(r)

	body, err := c.Compressor.Compress(r.Header.Get("Accept-Encoding"), rec.Status(), rec.Header(), rec.Body())
	switch {
	case err == nil:
		rec.SetBody(body)
	case errors.Is(err, ErrNotCompressible):
	default:
		c.Logger.Warn().Err(err).Str("endpoint", endpoint).Msg("compression failed, sending uncompressed")
	}

	ApplyHeaders(rec.Header(), endpoint, rec.Status())
	if r.Method != http.MethodHead && bodyAllowed(rec.Status()) {
		rec.Header().Set("Content-Length", strconv.Itoa(len(rec.Body())))
	}

	elapsed := timer.Elapsed()
	rec.Header().Set(HeaderResponseTime, FormatSeconds(elapsed))

	if c.Metrics != nil {
		c.Metrics.RecordRequest(endpoint, elapsed.Seconds(), rec.Status())
	}

	c.Logger.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("endpoint", endpoint).
		Int("status", rec.Status()).
		Dur("duration", elapsed).
		Str("cache", rec.Header().Get("X-Cache")).
		Str("request_id", r.Header.Get(httpx.HeaderRequestID)).
		Msg("request")

	if err := rec.FlushTo(w); err != nil {
		c.Logger.Debug().Err(err).Str("endpoint", endpoint).Msg("write response")
	}
}

func (c *Chain) endpoint(r *http.Request) string {
	if c.Endpoint != nil {
		return c.Endpoint(r)
	}
	return httpx.Endpoint(r)
}

// bodyAllowed: 1xx, 204 e 304 não levam corpo nem Content-Length. Em HEAD o
// Content-Length é o que o handler declarou.
func bodyAllowed(status int) bool {
	return status >= 200 && status != http.StatusNoContent && status != http.StatusNotModified
}
