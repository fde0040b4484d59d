package httpx

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	StaticPrefix    = "/static/"
	APIPrefix       = "/api/"
	HeaderRequestID = "X-Request-ID"
)

// Unmatched é o endpoint de toda request que nenhum roteador casou. Paths
// arbitrários (scanners, 404) não viram chaves de métricas.
const Unmatched = "unmatched"

// Endpoint devolve o identificador do endpoint: o padrão de rota do chi
// (ex.: /api/telegram/validate/{uuid}), o padrão do http.ServeMux ou, sem
// roteador nenhum, o path da URL.
//
// Dentro do chi, request sem rota casada devolve Unmatched. O padrão só fica
// completo depois do roteamento.
func Endpoint(r *http.Request) string {
	if p := routePattern(r); p != "" {
		return p
	}
	if chi.RouteContext(r.Context()) != nil {
		return Unmatched
	}
	if r.URL == nil || r.URL.Path == "" {
		return "/"
	}
	return r.URL.Path
}

// RoutedEndpoint é Endpoint sem o fallback para o path: fora de uma rota
// casada devolve sempre Unmatched. Serve para handlers atrás de um
// http.ServeMux, onde um 404 não deixa rastro do roteador.
func RoutedEndpoint(r *http.Request) string {
	if p := routePattern(r); p != "" {
		return p
	}
	return Unmatched
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" && p != "/*" {
			return p
		}
		return ""
	}
	return muxPattern(r.Pattern)
}

// muxPattern tira método e host de um padrão do ServeMux ("GET example.com/api/x").
func muxPattern(p string) string {
	if i := strings.IndexByte(p, ' '); i >= 0 {
		p = strings.TrimLeft(p[i+1:], " ")
	}
	if p != "" && !strings.HasPrefix(p, "/") {
		i := strings.IndexByte(p, '/')
		if i < 0 {
			return ""
		}
		p = p[i:]
	}
	return p
}

func IsStatic(endpoint string) bool {
	return strings.HasPrefix(endpoint, StaticPrefix)
}

func IsAPI(endpoint string) bool {
	return strings.HasPrefix(endpoint, APIPrefix)
}

// IsHealth: endpoints de API cujo nome contém "health".
func IsHealth(endpoint string) bool {
	return IsAPI(endpoint) && strings.Contains(endpoint, "health")
}
