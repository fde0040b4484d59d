// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - Store: janela deslizante por (classe, chave) em memória, com janitor e limite de chaves
//   - MemoryStatsStore / RedisStatsStore: contadores de decisões (allowed/denied)
package infra
