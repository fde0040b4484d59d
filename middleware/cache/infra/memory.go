package infra

import (
	"context"
	"sync"
	"time"

	"nexo-backend/middleware/cache/domain"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

var _ domain.Store = (*MemoryStore)(nil)

// MemoryStore é um LRU limitado com expiração por entrada.
// Entradas vencidas são removidas na leitura; a capacidade remove a menos usada.
type MemoryStore struct {
	mu      sync.Mutex
	lru     *simplelru.LRU[string, domain.Entry]
	now     func() time.Time
	evicted int64
	closed  bool
}

type MemoryOption func(*MemoryStore)

func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemoryStore(maxEntries int, opts ...MemoryOption) (*MemoryStore, error) {
	s := &MemoryStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	// callback roda com s.mu já adquirido (chamado de dentro de Add)
	lru, err := simplelru.NewLRU[string, domain.Entry](maxEntries, func(string, domain.Entry) {
		s.evicted++
	})
	if err != nil {
		return nil, err
	}
	s.lru = lru
	return s, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false, domain.ErrClosed
	}
	e, ok := s.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if e.Expired(s.now()) {
		s.lru.Remove(key)
		return nil, false, nil
	}
	return e.Value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrClosed
	}
	s.lru.Add(key, domain.NewEntry(key, value, s.now(), ttl))
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Remove(key)
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

// Evicted conta entradas removidas do LRU (capacidade, expiração ou Delete).
func (s *MemoryStore) Evicted() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evicted
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.lru.Purge()
	return nil
}
