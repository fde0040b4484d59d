package pool

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, max int) *Pool {
	t.Helper()
	p := New(SQLiteDialer(filepath.Join(t.TempDir(), "test.db")), max)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestPool_CheckoutReusesReleasedConnection(t *testing.T) {
	p := newTestPool(t, 2)
	ctx := context.Background()

	c1, err := p.Checkout(ctx)
	require.NoError(t, err)
	id := c1.ID()
	p.Release(c1)

	c2, err := p.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, c2.ID())
	p.Release(c2)

	st := p.Stats()
	assert.Equal(t, int64(1), st.Created)
	assert.Equal(t, 1, st.Idle)
	assert.Equal(t, int64(0), st.InUse)
}

func TestPool_CheckoutNeverBlocksBeyondMax(t *testing.T) {
	p := newTestPool(t, 1)
	ctx := context.Background()

	conns := make([]*Conn, 0, 3)
	for i := 0; i < 3; i++ {
		c, err := p.Checkout(ctx)
		require.NoError(t, err)
		conns = append(conns, c)
	}
	assert.Equal(t, int64(3), p.Stats().InUse)

	for _, c := range conns {
		p.Release(c)
	}

	st := p.Stats()
	assert.Equal(t, 1, st.Idle, "idle set must not exceed maxConnections")
	assert.Equal(t, int64(2), st.Closed)
	assert.Equal(t, int64(0), st.InUse)
}

func TestPool_DoubleReleaseIsIgnored(t *testing.T) {
	p := newTestPool(t, 2)

	c, err := p.Checkout(context.Background())
	require.NoError(t, err)
	p.Release(c)
	p.Release(c)

	st := p.Stats()
	assert.Equal(t, 1, st.Idle)
	assert.Equal(t, int64(0), st.InUse)
}

func TestPool_DialErrorPropagates(t *testing.T) {
	dialErr := errors.New("disk full")
	p := New(func(context.Context) (*sqlx.DB, error) { return nil, dialErr }, 2)

	_, err := p.Checkout(context.Background())
	assert.ErrorIs(t, err, dialErr)

	err = p.WithConnection(context.Background(), func(*Conn) error { return nil })
	assert.ErrorIs(t, err, dialErr)

	_, err = p.Execute(context.Background(), "SELECT 1", nil, ModeOne)
	assert.ErrorIs(t, err, dialErr)
}

func TestPool_WithConnectionReleasesOnPanic(t *testing.T) {
	p := newTestPool(t, 2)

	assert.PanicsWithValue(t, "boom", func() {
		_ = p.WithConnection(context.Background(), func(*Conn) error {
			panic("boom")
		})
	})

	st := p.Stats()
	assert.Equal(t, int64(0), st.InUse)
	assert.Equal(t, 1, st.Idle)
}

func TestPool_WithConnectionReturnsFnError(t *testing.T) {
	p := newTestPool(t, 2)
	want := errors.New("fn failed")

	err := p.WithConnection(context.Background(), func(*Conn) error { return want })
	assert.ErrorIs(t, err, want)
	assert.Equal(t, int64(0), p.Stats().InUse)
}

func TestPool_NoConnectionHeldTwice(t *testing.T) {
	p := newTestPool(t, 4)

	var (
		mu      sync.Mutex
		holders = map[uint64]int{}
		bad     atomic.Bool
		wg      sync.WaitGroup
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = p.WithConnection(context.Background(), func(c *Conn) error {
					mu.Lock()
					holders[c.ID()]++
					if holders[c.ID()] > 1 {
						bad.Store(true)
					}
					mu.Unlock()

					mu.Lock()
					holders[c.ID()]--
					mu.Unlock()
					return nil
				})
			}
		}()
	}
	wg.Wait()

	assert.False(t, bad.Load(), "a connection was handed to two holders")
	st := p.Stats()
	assert.Equal(t, int64(0), st.InUse)
	assert.LessOrEqual(t, st.Idle, 4)
}

func TestPool_CloseClosesIdleAndLateReleases(t *testing.T) {
	p := New(SQLiteDialer(filepath.Join(t.TempDir(), "close.db")), 2)
	ctx := context.Background()

	idle, err := p.Checkout(ctx)
	require.NoError(t, err)
	held, err := p.Checkout(ctx)
	require.NoError(t, err)
	p.Release(idle)

	require.NoError(t, p.Close())
	assert.Equal(t, int64(1), p.Stats().Closed)

	p.Release(held)
	assert.Equal(t, int64(2), p.Stats().Closed)
	assert.Equal(t, 0, p.Stats().Idle)

	_, err = p.Checkout(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}
