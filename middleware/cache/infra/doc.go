// Package infra contém os backends do cache:
//
//   - MemoryStore: LRU limitado em memória (hashicorp/golang-lru)
//   - BigCacheStore: cache off-heap (allegro/bigcache) com expiração por entrada
//   - RedisStore: Redis com TTL nativo
package infra
