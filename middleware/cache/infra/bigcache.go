package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nexo-backend/middleware/cache/domain"

	"github.com/allegro/bigcache/v3"
)

var _ domain.Store = (*BigCacheStore)(nil)

// BigCacheStore guarda entradas fora do heap do GC. O bigcache só conhece uma
// janela de vida global, então cada valor vai num envelope JSON com o próprio
// ExpiresAt e a expiração por entrada é checada na leitura.
type BigCacheStore struct {
	cache *bigcache.BigCache
	now   func() time.Time
}

type BigCacheOption func(*BigCacheStore)

func WithBigCacheClock(now func() time.Time) BigCacheOption {
	return func(s *BigCacheStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewBigCacheStore cria o backend. lifeWindow é o teto global (deve ser >= maior TTL usado);
// maxMB limita a memória (0 = sem limite).
func NewBigCacheStore(ctx context.Context, lifeWindow time.Duration, maxMB int, opts ...BigCacheOption) (*BigCacheStore, error) {
	cfg := bigcache.DefaultConfig(lifeWindow)
	cfg.HardMaxCacheSize = maxMB
	cfg.Verbose = false
	cfg.MaxEntrySize = 1024 * 1024

	bc, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bigcache: %w", err)
	}

	s := &BigCacheStore{cache: bc, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *BigCacheStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := s.cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("bigcache get %s: %w", key, err)
	}

	var e domain.Entry
	if err := json.Unmarshal(data, &e); err != nil {
		// entrada corrompida conta como ausente
		_ = s.cache.Delete(key)
		return nil, false, nil
	}
	if e.Expired(s.now()) {
		_ = s.cache.Delete(key)
		return nil, false, nil
	}
	return e.Value, true, nil
}

func (s *BigCacheStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	data, err := json.Marshal(domain.NewEntry(key, value, s.now(), ttl))
	if err != nil {
		return fmt.Errorf("bigcache encode %s: %w", key, err)
	}
	if err := s.cache.Set(key, data); err != nil {
		return fmt.Errorf("bigcache set %s: %w", key, err)
	}
	return nil
}

func (s *BigCacheStore) Delete(_ context.Context, key string) error {
	err := s.cache.Delete(key)
	if err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return fmt.Errorf("bigcache delete %s: %w", key, err)
	}
	return nil
}

func (s *BigCacheStore) Close() error {
	return s.cache.Close()
}
