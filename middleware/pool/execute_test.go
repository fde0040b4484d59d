package pool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_Modes(t *testing.T) {
	p := newTestPool(t, 2)
	ctx := context.Background()

	_, err := p.Execute(ctx, `CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`, nil, ModeNone)
	require.NoError(t, err)

	res, err := p.Execute(ctx, `INSERT INTO items (name) VALUES (?), (?)`, []any{"a", "b"}, ModeNone)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.RowsAffected)

	one, err := p.Execute(ctx, `SELECT id, name FROM items WHERE name = ?`, []any{"b"}, ModeOne)
	require.NoError(t, err)
	require.NotNil(t, one.Row)
	assert.Equal(t, "b", one.Row["name"])

	none, err := p.Execute(ctx, `SELECT id FROM items WHERE name = ?`, []any{"zzz"}, ModeOne)
	require.NoError(t, err)
	assert.Nil(t, none.Row)

	all, err := p.Execute(ctx, `SELECT name FROM items ORDER BY id`, nil, ModeAll)
	require.NoError(t, err)
	require.Len(t, all.Rows, 2)
	assert.Equal(t, "a", all.Rows[0]["name"])

	empty, err := p.Execute(ctx, `SELECT name FROM items WHERE id < 0`, nil, ModeAll)
	require.NoError(t, err)
	assert.Empty(t, empty.Rows)
}

func TestExecute_WritesAreVisibleAcrossConnections(t *testing.T) {
	p := newTestPool(t, 2)
	ctx := context.Background()

	_, err := p.Execute(ctx, `CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)`, nil, ModeNone)
	require.NoError(t, err)

	// segura uma conexão para forçar o Execute a usar outra
	held, err := p.Checkout(ctx)
	require.NoError(t, err)
	defer p.Release(held)

	_, err = p.Execute(ctx, `INSERT INTO kv (k, v) VALUES ('x', '1')`, nil, ModeNone)
	require.NoError(t, err)

	var v string
	require.NoError(t, held.DB().GetContext(ctx, &v, `SELECT v FROM kv WHERE k = 'x'`))
	assert.Equal(t, "1", v)
}

func TestExecute_StatementErrorIsWrapped(t *testing.T) {
	p := newTestPool(t, 1)

	_, err := p.Execute(context.Background(), `SELECT * FROM missing_table`, nil, ModeAll)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pool: execute (all)")
	assert.Equal(t, int64(0), p.Stats().InUse)
}

func TestOptimize(t *testing.T) {
	p := newTestPool(t, 1)
	ctx := context.Background()

	_, err := p.Execute(ctx, `CREATE TABLE t (x INTEGER)`, nil, ModeNone)
	require.NoError(t, err)

	assert.Equal(t, 0, p.Optimize(ctx))

	res, err := p.Execute(ctx, `PRAGMA journal_mode`, nil, ModeOne)
	require.NoError(t, err)
	assert.Equal(t, "wal", res.Row["journal_mode"])
}

func TestOptimize_FailuresAreCounted(t *testing.T) {
	p := newTestPool(t, 1)
	require.NoError(t, p.Close())

	assert.Equal(t, len(optimizeStatements), p.Optimize(context.Background()))
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "none", ModeNone.String())
	assert.Equal(t, "one", ModeOne.String())
	assert.Equal(t, "all", ModeAll.String())
	assert.Equal(t, "mode(9)", Mode(9).String())
}
