// Package cache implementa o cache-aside do backend em dois níveis:
//
//   - Func: memoiza uma função (chave prefix:nome:md5(args)), sem cachear erros
//   - Responses: middleware HTTP que guarda respostas 200 por endpoint+URL e marca X-Cache
//
// O armazenamento é um domain.Store (memory, bigcache ou redis, ver infra).
// Falhas do backend nunca quebram a request: viram miss e são logadas.
package cache
