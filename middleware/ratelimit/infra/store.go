package infra

import (
	"sync"
	"time"

	"nexo-backend/middleware/ratelimit/domain"
)

// Store é a implementação de infra do rate limit por janela deslizante:
// um log de timestamps por (classe, chave), mantido em memória.
//
// O mapa tem um mutex próprio e cada janela também; a decisão de uma chave não
// bloqueia as demais.
type Store struct {
	mu           sync.Mutex
	windows      map[string]*window
	cleanupEvery time.Duration
	maxKeys      int
	now          func() time.Time
}

type window struct {
	mu       sync.Mutex
	stamps   []time.Time
	span     time.Duration
	lastSeen time.Time
	// dead marca janelas removidas do mapa pelo janitor/eviction; quem ainda
	// tiver o ponteiro precisa buscar (ou criar) outra.
	dead bool
}

type StoreOption func(*Store)

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.cleanupEvery = d }
}

// WithMaxKeys limita a quantidade de janelas vivas. 0 = sem limite.
func WithMaxKeys(n int) StoreOption {
	return func(s *Store) { s.maxKeys = n }
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		windows:      make(map[string]*window),
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) CleanupEvery() time.Duration { return s.cleanupEvery }

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// Allow implementa domain.LimiterStore.
//
// Descarta timestamps fora da janela; se ainda houver MaxRequests registros,
// bloqueia sem registrar nada. Caso contrário registra agora e admite.
func (s *Store) Allow(key domain.Key, class domain.LimitClass) domain.Decision {
	bucket := class.Name + "|" + string(key)

	for {
		now := s.now()
		w := s.window(bucket, class.Window, now)

		w.mu.Lock()
		if w.dead {
			w.mu.Unlock()
			continue
		}
		dec := w.admit(now, class.MaxRequests)
		w.mu.Unlock()
		return dec
	}
}

func (s *Store) window(bucket string, span time.Duration, now time.Time) *window {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.windows[bucket]; ok {
		return w
	}

	if s.maxKeys > 0 && len(s.windows) >= s.maxKeys {
		s.sweepLocked(now)
		if len(s.windows) >= s.maxKeys {
			s.evictOldestLocked()
		}
	}

	w := &window{span: span, lastSeen: now}
	s.windows[bucket] = w
	return w
}

func (w *window) prune(now time.Time) {
	i := 0
	for i < len(w.stamps) && now.Sub(w.stamps[i]) >= w.span {
		i++
	}
	if i == 0 {
		return
	}
	n := copy(w.stamps, w.stamps[i:])
	clear(w.stamps[n:])
	w.stamps = w.stamps[:n]
}

func (w *window) admit(now time.Time, max int) domain.Decision {
	w.lastSeen = now
	w.prune(now)

	if len(w.stamps) >= max {
		retry := w.span
		if len(w.stamps) > 0 {
			retry = w.stamps[0].Add(w.span).Sub(now)
		}
		return domain.Decision{Allowed: false, RetryAfter: retry}
	}

	w.stamps = append(w.stamps, now)
	return domain.Decision{Allowed: true, Remaining: max - len(w.stamps)}
}

// Cleanup remove janelas sem nenhum timestamp vivo.
func (s *Store) Cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
}

func (s *Store) sweepLocked(now time.Time) {
	for k, w := range s.windows {
		w.mu.Lock()
		w.prune(now)
		if len(w.stamps) == 0 {
			w.dead = true
			delete(s.windows, k)
		}
		w.mu.Unlock()
	}
}

func (s *Store) evictOldestLocked() {
	var (
		oldestKey string
		oldest    *window
		oldestAt  time.Time
	)
	for k, w := range s.windows {
		w.mu.Lock()
		seen := w.lastSeen
		w.mu.Unlock()
		if oldest == nil || seen.Before(oldestAt) {
			oldestKey, oldest, oldestAt = k, w, seen
		}
	}
	if oldest == nil {
		return
	}
	oldest.mu.Lock()
	oldest.dead = true
	oldest.mu.Unlock()
	delete(s.windows, oldestKey)
}

// StartJanitor inicia uma goroutine que limpa janelas vazias periodicamente.
// Pare cancelando o contexto.
func (s *Store) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
// (Permite reuso em libs sem acoplar.)
type DoneContext interface {
	Done() <-chan struct{}
}
