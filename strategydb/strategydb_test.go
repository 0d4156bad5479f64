package strategydb_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/strategydb"
)

func openMem(t *testing.T) *strategydb.DB {
	t.Helper()
	db, err := strategydb.Open(strategydb.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func twoNodes(t *testing.T) *automaton.Store {
	t.Helper()
	s := automaton.NewStore(2)
	a, err := s.Insert(0, 1, true, automaton.State{false, false})
	require.NoError(t, err)
	b, err := s.Insert(0, 0, false, automaton.State{false, true})
	require.NoError(t, err)
	require.NoError(t, s.AddEdge(a, b))
	require.NoError(t, s.AddEdge(b, b))
	return s
}

func dump(t *testing.T, s *automaton.Store) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, automaton.WriteGR1C(&b, s, automaton.GR1CVersion1))
	return b.String()
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	db := openMem(t)
	s := twoNodes(t)

	require.NoError(t, db.Put(ctx, "abc123", s))
	got, entry, err := db.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, dump(t, s), dump(t, got))
	assert.Equal(t, "abc123", entry.Digest)
	assert.Equal(t, 2, entry.Width)
	assert.Equal(t, 2, entry.Nodes)
	assert.False(t, entry.Stored.IsZero())
}

func TestOverwrite(t *testing.T) {
	ctx := context.Background()
	db := openMem(t)
	s := twoNodes(t)
	require.NoError(t, db.Put(ctx, "k", s))

	_, err := s.Insert(1, 0, false, automaton.State{true, true})
	require.NoError(t, err)
	require.NoError(t, db.Put(ctx, "k", s))

	got, entry, err := db.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())
	assert.Equal(t, 3, entry.Nodes)
}

func TestListDelete(t *testing.T) {
	ctx := context.Background()
	db := openMem(t)
	s := twoNodes(t)
	for _, d := range []string{"b", "a", "c"} {
		require.NoError(t, db.Put(ctx, d, s))
	}

	entries, err := db.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].Digest)
	assert.Equal(t, "c", entries[2].Digest)

	require.NoError(t, db.Delete(ctx, "b"))
	_, _, err = db.Get(ctx, "b")
	assert.ErrorIs(t, err, strategydb.ErrNotFound)
	assert.ErrorIs(t, db.Delete(ctx, "b"), strategydb.ErrNotFound)

	entries, err = db.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestErrors(t *testing.T) {
	ctx := context.Background()
	db := openMem(t)

	assert.ErrorIs(t, db.Put(ctx, "", twoNodes(t)), strategydb.ErrInvalidKey)
	_, _, err := db.Get(ctx, "a/b")
	assert.ErrorIs(t, err, strategydb.ErrInvalidKey)

	_, err = strategydb.Open(strategydb.Config{})
	assert.ErrorIs(t, err, strategydb.ErrConfig)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, db.Put(cancelled, "x", twoNodes(t)), context.Canceled)
}

func TestPersistent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	db, err := strategydb.Open(strategydb.DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, db.Put(ctx, "p", twoNodes(t)))
	require.NoError(t, db.Close())

	db, err = strategydb.Open(strategydb.DefaultConfig(dir))
	require.NoError(t, err)
	defer db.Close()
	got, _, err := db.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
}
