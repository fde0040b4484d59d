// Package perf compõe a cadeia de performance que envolve o roteador:
// cronômetro por request, bufferização da resposta, compressão gzip,
// política de headers (Cache-Control + segurança), X-Response-Time,
// registro de métricas e log da request.
//
// Rate limit e cache de respostas entram por rota (ratelimit.Guard e
// cache.Responses), dentro desta cadeia.
package perf
