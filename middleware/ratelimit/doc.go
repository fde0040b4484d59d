// Package ratelimit fornece o adapter HTTP (net/http) do rate limit por janela deslizante.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (classes de limite, decisão, estatísticas)
//   - application: caso de uso (decisão allow/deny) sem net/http
//   - infra: implementações concretas (janela deslizante em memória, stats em memória/Redis)
//   - ratelimit (este pacote): Guard por classe + extração de chave + tradução para 429/headers
//
// Fluxo por request:
//
//   1) Extrai a chave do cliente (header/XFF/IP)
//   2) Chama a camada application com a classe da rota (default, auth, data)
//   3) Se bloqueado, responde 429 com corpo JSON e Retry-After
//   4) Se permitido, chama o próximo handler
//
// As classes e o comportamento vêm de internal/config (chaves ratelimit.*).
package ratelimit
