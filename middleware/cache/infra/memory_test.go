package infra

import (
	"context"
	"testing"
	"time"

	"nexo-backend/middleware/cache/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetAndGetWithinTTL(t *testing.T) {
	s, err := NewMemoryStore(10)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryStore_ExpiredEntryIsEvictedOnRead(t *testing.T) {
	clk := newFakeClock()
	s, err := NewMemoryStore(10, WithMemoryClock(clk.Now))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 5*time.Second))
	clk.Advance(5 * time.Second)

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_OverwriteResetsExpiry(t *testing.T) {
	clk := newFakeClock()
	s, err := NewMemoryStore(10, WithMemoryClock(clk.Now))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("old"), 5*time.Second))
	clk.Advance(4 * time.Second)
	require.NoError(t, s.Set(ctx, "k", []byte("new"), 5*time.Second))
	clk.Advance(4 * time.Second)

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("new"), got)
}

func TestMemoryStore_CapacityEvictsLeastRecentlyUsed(t *testing.T) {
	s, err := NewMemoryStore(2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, s.Set(ctx, "b", []byte("2"), time.Minute))
	_, _, _ = s.Get(ctx, "a") // "a" passa a ser a mais recente
	require.NoError(t, s.Set(ctx, "c", []byte("3"), time.Minute))

	_, ok, _ := s.Get(ctx, "b")
	assert.False(t, ok, "b should have been evicted")
	_, ok, _ = s.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, int64(1), s.Evicted())
}

func TestMemoryStore_InvalidCapacity(t *testing.T) {
	_, err := NewMemoryStore(0)
	assert.Error(t, err)
}

func TestMemoryStore_ClosedReturnsError(t *testing.T) {
	s, err := NewMemoryStore(2)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, _, err = s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, domain.ErrClosed)
	assert.ErrorIs(t, s.Set(context.Background(), "k", nil, time.Second), domain.ErrClosed)
}
