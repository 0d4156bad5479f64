package automaton_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gr1synth/automaton"
)

func st(bits string) automaton.State {
	out := make(automaton.State, len(bits))
	for i, c := range bits {
		out[i] = c == '1'
	}
	return out
}

func mustInsert(t *testing.T, s *automaton.Store, mode, rank int, initial bool, bits string) automaton.NodeID {
	t.Helper()
	id, err := s.Insert(mode, rank, initial, st(bits))
	require.NoError(t, err)
	return id
}

// requireNoDangling fails if any live node has an edge to a dead id.
func requireNoDangling(t *testing.T, s *automaton.Store) {
	t.Helper()
	for _, n := range s.Nodes() {
		for _, to := range n.Trans {
			require.True(t, s.Has(to), "node %d has dangling edge to %d", n.ID, to)
		}
	}
}

func TestStore_InsertFindCRUD(t *testing.T) {
	s := automaton.NewStore(2)
	a := mustInsert(t, s, 0, 1, true, "01")
	b := mustInsert(t, s, 1, 0, false, "01")
	assert.Equal(t, 2, s.Len())

	got, ok := s.Find(0, st("01"))
	require.True(t, ok)
	assert.Equal(t, a, got)
	got, ok = s.Find(1, st("01"))
	require.True(t, ok)
	assert.Equal(t, b, got)
	_, ok = s.Find(2, st("01"))
	assert.False(t, ok)

	assert.Equal(t, 1, s.FindIndex(1, st("01")))
	assert.Equal(t, -1, s.FindIndex(0, st("11")))

	require.NoError(t, s.AppendTransition(0, st("01"), 1, st("01")))
	assert.Equal(t, []automaton.NodeID{b}, s.Successors(a))
	assert.ErrorIs(t, s.AppendTransition(0, st("11"), 1, st("01")), automaton.ErrNodeNotFound)

	_, err := s.Insert(0, 0, false, st("1"))
	assert.ErrorIs(t, err, automaton.ErrStateWidth)

	require.NoError(t, s.Delete(b))
	_, ok = s.Find(1, st("01"))
	assert.False(t, ok)
	assert.Empty(t, s.Successors(a))
	assert.ErrorIs(t, s.Delete(b), automaton.ErrNodeNotFound)
	requireNoDangling(t, s)
}

func TestStore_FindMatchesLinearScan(t *testing.T) {
	s := automaton.NewStore(3)
	for i := 0; i < 8; i++ {
		bits := []byte{'0' + byte(i>>2&1), '0' + byte(i>>1&1), '0' + byte(i&1)}
		mustInsert(t, s, i%3, i, false, string(bits))
	}
	// duplicates: newest wins
	dup := mustInsert(t, s, 0, 9, false, "000")
	require.NoError(t, s.Delete(automaton.NodeID(4)))
	require.NoError(t, s.SetMode(automaton.NodeID(5), 0))

	for _, n := range s.Nodes() {
		for mode := 0; mode < 3; mode++ {
			a, okA := s.Find(mode, n.State)
			b, okB := s.FindLinear(mode, n.State)
			assert.Equal(t, okA, okB)
			assert.Equal(t, a, b)
		}
	}
	got, _ := s.Find(0, st("000"))
	assert.Equal(t, dup, got)
}

func TestStore_ReplaceTransitions(t *testing.T) {
	s := automaton.NewStore(1)
	a := mustInsert(t, s, 0, 0, true, "0")
	b := mustInsert(t, s, 0, 0, false, "1")
	c := mustInsert(t, s, 1, 0, false, "1")
	require.NoError(t, s.AddEdge(a, b))
	require.NoError(t, s.AddEdge(a, b))
	require.NoError(t, s.AddEdge(b, a))

	require.NoError(t, s.ReplaceTransitions(b, c))
	assert.Equal(t, []automaton.NodeID{c, c}, s.Successors(a))

	require.NoError(t, s.ReplaceTransitions(c, automaton.None))
	assert.Empty(t, s.Successors(a))
	assert.ErrorIs(t, s.ReplaceTransitions(a, automaton.NodeID(42)), automaton.ErrNodeNotFound)
}

func TestStore_PruneDeadEndsIdempotent(t *testing.T) {
	s := automaton.NewStore(1)
	a := mustInsert(t, s, 0, 0, true, "0")
	b := mustInsert(t, s, 0, 0, false, "1")
	c := mustInsert(t, s, 1, 0, false, "1")
	d := mustInsert(t, s, 1, 0, false, "0")
	require.NoError(t, s.AddEdge(a, b))
	require.NoError(t, s.AddEdge(b, a))
	require.NoError(t, s.AddEdge(a, c))
	require.NoError(t, s.AddEdge(c, d)) // d is a dead end, then c

	n, err := s.PruneDeadEnds(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []automaton.NodeID{a, b}, s.IDs())
	n, err = s.PruneDeadEnds(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	requireNoDangling(t, s)
}

func TestStore_PruneDeadEndsKeep(t *testing.T) {
	s := automaton.NewStore(1)
	a := mustInsert(t, s, 0, 0, true, "0")
	b := mustInsert(t, s, 0, 0, false, "1")
	c := mustInsert(t, s, 1, 0, false, "1")
	require.NoError(t, s.AddEdge(a, b))
	require.NoError(t, s.AddEdge(a, c))

	// b is a legitimate terminal; c is not
	n, err := s.PruneDeadEnds(func(v *automaton.Node) bool { return v.ID == b })
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []automaton.NodeID{a, b}, s.IDs())
	assert.Equal(t, []automaton.NodeID{b}, s.Successors(a))
	requireNoDangling(t, s)
}

func TestStore_ForwardPrune(t *testing.T) {
	s := automaton.NewStore(1)
	init := mustInsert(t, s, 0, 0, true, "0")
	x := mustInsert(t, s, 1, 0, false, "0")
	y := mustInsert(t, s, 1, 0, false, "1")
	z := mustInsert(t, s, 2, 0, false, "1")
	require.NoError(t, s.AddEdge(init, init))
	require.NoError(t, s.AddEdge(x, y))
	require.NoError(t, s.AddEdge(y, y))
	require.NoError(t, s.AddEdge(init, z))

	// x has no predecessor; y's only foreign predecessor is x.
	n, err := s.ForwardPrune([]automaton.NodeID{x, x, init, z, automaton.NodeID(99)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []automaton.NodeID{init, z}, s.IDs())
	requireNoDangling(t, s)
}

func TestStore_CloneAbsorbCompact(t *testing.T) {
	s := automaton.NewStore(1)
	a := mustInsert(t, s, 0, 0, true, "0")
	b := mustInsert(t, s, 0, 1, false, "1")
	require.NoError(t, s.AddEdge(a, b))
	require.NoError(t, s.AddEdge(b, a))

	c := s.Clone()
	require.NoError(t, c.Delete(a))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []automaton.NodeID{b}, s.Successors(a))

	other := automaton.NewStore(1)
	x := mustInsert(t, other, 3, 0, false, "1")
	require.NoError(t, other.AddEdge(x, x))
	remap, err := s.Absorb(other)
	require.NoError(t, err)
	nx := remap[x]
	assert.Equal(t, []automaton.NodeID{nx}, s.Successors(nx))

	require.NoError(t, s.Delete(a))
	m := s.Compact()
	assert.Equal(t, automaton.NodeID(0), m[b])
	assert.Equal(t, automaton.NodeID(1), m[nx])
	assert.Equal(t, []automaton.NodeID{0, 1}, s.IDs())
	got, ok := s.Find(3, st("1"))
	require.True(t, ok)
	assert.Equal(t, automaton.NodeID(1), got)
	requireNoDangling(t, s)

	_, err = s.Absorb(automaton.NewStore(2))
	assert.ErrorIs(t, err, automaton.ErrStateWidth)
}
