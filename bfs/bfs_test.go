package bfs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/bfs"
)

// buildChain creates a chain 0→1→…→n-1 of one-bit states, node 0 initial.
func buildChain(t *testing.T, n int) *automaton.Store {
	t.Helper()
	s := automaton.NewStore(1)
	for i := 0; i < n; i++ {
		_, err := s.Insert(i, 0, i == 0, automaton.State{i%2 == 1})
		require.NoError(t, err)
	}
	for i := 0; i+1 < n; i++ {
		require.NoError(t, s.AddEdge(automaton.NodeID(i), automaton.NodeID(i+1)))
	}
	return s
}

func TestBFS_NilStore(t *testing.T) {
	res, err := bfs.BFS(nil, nil)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, bfs.ErrStoreNil)
}

func TestBFS_StartNotFound(t *testing.T) {
	s := buildChain(t, 2)
	_, err := bfs.BFS(s, []automaton.NodeID{7})
	assert.ErrorIs(t, err, bfs.ErrStartNotFound)
}

func TestBFS_ChainDepthAndPath(t *testing.T) {
	s := buildChain(t, 4)
	res, err := bfs.BFS(s, []automaton.NodeID{0})
	require.NoError(t, err)
	assert.Equal(t, []automaton.NodeID{0, 1, 2, 3}, res.Order)
	assert.Equal(t, 3, res.Depth[3])
	path, err := res.PathTo(3)
	require.NoError(t, err)
	assert.Equal(t, []automaton.NodeID{0, 1, 2, 3}, path)
}

func TestBFS_OnVisitDepthsAndUnreached(t *testing.T) {
	s := buildChain(t, 4)
	orphan, err := s.Insert(9, 0, false, automaton.State{true})
	require.NoError(t, err)

	depths := map[automaton.NodeID]int{}
	res, err := bfs.BFS(s, []automaton.NodeID{1}, bfs.WithOnVisit(func(n *automaton.Node, d int) error {
		depths[n.ID] = d
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, map[automaton.NodeID]int{1: 0, 2: 1, 3: 2}, depths)
	path, err := res.PathTo(1)
	require.NoError(t, err)
	assert.Equal(t, []automaton.NodeID{1}, path)
	_, err = res.PathTo(orphan)
	assert.Error(t, err)
	_, err = res.PathTo(0)
	assert.Error(t, err)
}

func TestBFS_OnVisitErrorAndCancel(t *testing.T) {
	s := buildChain(t, 3)
	boom := errors.New("boom")
	_, err := bfs.BFS(s, []automaton.NodeID{0}, bfs.WithOnVisit(func(n *automaton.Node, _ int) error {
		if n.ID == 1 {
			return boom
		}
		return nil
	}))
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = bfs.BFS(s, []automaton.NodeID{0}, bfs.WithContext(ctx))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrimUnreachable(t *testing.T) {
	s := buildChain(t, 3)
	orphan, err := s.Insert(9, 0, false, automaton.State{true})
	require.NoError(t, err)
	require.NoError(t, s.AddEdge(orphan, 2))

	n, err := bfs.TrimUnreachable(s)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, s.Has(orphan))
	assert.Equal(t, 3, s.Len())
}
