// Package domain define o contrato de armazenamento do cache (chave -> bytes com expiração)
// e o tipo Entry. Não depende de nenhum backend concreto.
package domain
