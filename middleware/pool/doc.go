// Package pool mantém um conjunto limitado de conexões reutilizáveis com o SQLite embarcado.
//
// Checkout nunca espera: devolve uma conexão ociosa ou abre uma nova. Release
// guarda a conexão se ainda houver vaga entre as ociosas (maxConnections) e fecha
// caso contrário. O conjunto de ociosas é um channel com buffer, no mesmo estilo
// do semáforo por channel usado no rate limit.
package pool
