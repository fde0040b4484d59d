// Package domain define contratos e tipos de domínio do rate limit por janela deslizante:
// chave do cliente, classes de limite, decisão e estatísticas.
//
// Este pacote não depende de net/http nem de implementações concretas.
package domain
