package cache

import (
	"context"
	"time"

	"nexo-backend/middleware/cache/domain"

	"github.com/rs/zerolog"
)

const DefaultTTL = 300 * time.Second

// HitRecorder recebe hits/misses (normalmente o metrics.Collector).
type HitRecorder interface {
	RecordCacheHit()
	RecordCacheMiss()
}

type Cache struct {
	store  domain.Store
	ttl    time.Duration
	prefix string
	log    zerolog.Logger
	hits   HitRecorder
}

type Option func(*Cache)

func WithDefaultTTL(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithPrefix define o prefixo das chaves de Func.
func WithPrefix(prefix string) Option {
	return func(c *Cache) { c.prefix = prefix }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

func WithHitRecorder(h HitRecorder) Option {
	return func(c *Cache) { c.hits = h }
}

func New(store domain.Store, opts ...Option) *Cache {
	c := &Cache{
		store: store,
		ttl:   DefaultTTL,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) DefaultTTL() time.Duration { return c.ttl }

// Get devolve o valor se presente e não expirado. Erro do backend vira miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		return nil, false
	}
	return v, ok
}

// Set grava com ttl (ttl <= 0 usa o padrão). O erro é devolvido para o chamador
// decidir; os wrappers deste pacote só logam.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	return c.store.Set(ctx, key, value, ttl)
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

func (c *Cache) Close() error {
	return c.store.Close()
}

func (c *Cache) hit() {
	if c.hits != nil {
		c.hits.RecordCacheHit()
	}
}

func (c *Cache) miss() {
	if c.hits != nil {
		c.hits.RecordCacheMiss()
	}
}
