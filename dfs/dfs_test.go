package dfs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/dfs"
)

// diamond builds 0→1, 0→2, 1→3, 2→3 plus an isolated node 4.
func diamond(t *testing.T) *automaton.Store {
	t.Helper()
	s := automaton.NewStore(2)
	for i := 0; i < 5; i++ {
		_, err := s.Insert(0, i, i == 0, automaton.State{i&1 == 1, i&2 == 2})
		require.NoError(t, err)
	}
	for _, e := range [][2]automaton.NodeID{{0, 1}, {0, 2}, {1, 3}, {2, 3}} {
		require.NoError(t, s.AddEdge(e[0], e[1]))
	}
	return s
}

func TestDFS_Errors(t *testing.T) {
	_, err := dfs.DFS(nil, 0)
	assert.ErrorIs(t, err, dfs.ErrStoreNil)

	_, err = dfs.DFS(diamond(t), 9)
	assert.ErrorIs(t, err, dfs.ErrStartNotFound)
}

func TestDFS_PostOrderAndParents(t *testing.T) {
	res, err := dfs.DFS(diamond(t), 0)
	require.NoError(t, err)
	assert.Equal(t, []automaton.NodeID{3, 1, 2, 0}, res.Order)
	assert.Equal(t, automaton.NodeID(1), res.Parent[3])
	assert.Equal(t, 2, res.Depth[3])
	assert.False(t, res.Visited[4])
}

func TestDFS_Filter(t *testing.T) {
	res, err := dfs.DFS(diamond(t), 0, dfs.WithFilterNeighbor(func(_, next *automaton.Node) bool {
		return next.ID != 2
	}))
	require.NoError(t, err)
	assert.False(t, res.Visited[2])
	assert.Equal(t, 1, res.SkippedNeighbors)
}

func TestDFS_HookErrorAndCancel(t *testing.T) {
	boom := errors.New("boom")
	_, err := dfs.DFS(diamond(t), 0, dfs.WithOnVisit(func(n *automaton.Node) error {
		if n.ID == 1 {
			return boom
		}
		return nil
	}))
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = dfs.DFS(diamond(t), 0, dfs.WithContext(ctx))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReach_ModeFilter(t *testing.T) {
	s := automaton.NewStore(1)
	a, _ := s.Insert(0, 1, true, automaton.State{false})
	b, _ := s.Insert(0, 0, false, automaton.State{true})
	c, _ := s.Insert(1, 0, false, automaton.State{true})
	require.NoError(t, s.AddEdge(a, b))
	require.NoError(t, s.AddEdge(b, a))
	require.NoError(t, s.AddEdge(b, c))

	sameMode := func(curr, next *automaton.Node) bool { return curr.Mode == next.Mode }
	got, err := dfs.Reach(s, a, sameMode)
	require.NoError(t, err)
	assert.Equal(t, []automaton.NodeID{b, a}, got)

	got, err = dfs.Reach(s, c, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
