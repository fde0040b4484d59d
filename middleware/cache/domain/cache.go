package domain

import (
	"context"
	"errors"
	"time"
)

// ErrClosed é retornado por backends já fechados.
var ErrClosed = errors.New("cache store closed")

// Entry é um valor armazenado com seu instante de expiração.
// Um Entry nunca é devolvido quando now >= ExpiresAt.
type Entry struct {
	Key       string    `json:"key"`
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewEntry(key string, value []byte, now time.Time, ttl time.Duration) Entry {
	return Entry{Key: key, Value: value, ExpiresAt: now.Add(ttl)}
}

func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store é o backend do cache. Get devolve ok=false para chave ausente ou expirada;
// err só para falha do backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
