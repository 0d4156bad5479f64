// Package bfs provides tunable options and error definitions
// for breadth-first search over an automaton.Store.
package bfs

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/gr1synth/automaton"
)

// Sentinel errors for BFS execution.
var (
	// ErrStartNotFound is returned when a start id is not a live node.
	ErrStartNotFound = errors.New("bfs: start node not found")

	// ErrStoreNil is returned if a nil store pointer is passed.
	ErrStoreNil = errors.New("bfs: store is nil")
)

// Option configures BFS behavior via functional arguments.
type Option func(*BFSOptions)

// BFSOptions holds parameters and callbacks to customize BFS execution.
type BFSOptions struct {
	// Ctx allows cancellation and deadlines.
	Ctx context.Context

	// OnVisit is called when visiting a node. If it returns an error,
	// BFS aborts and propagates that error.
	OnVisit func(n *automaton.Node, depth int) error
}

// DefaultOptions returns a BFSOptions with sane defaults:
//   - Context.Background()
//   - no-op OnVisit
func DefaultOptions() BFSOptions {
	return BFSOptions{
		Ctx:     context.Background(),
		OnVisit: func(*automaton.Node, int) error { return nil },
	}
}

// WithContext sets a custom context for cancellation.
func WithContext(ctx context.Context) Option {
	return func(o *BFSOptions) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithOnVisit registers a callback to run on visit; returning an error
// from this callback stops the BFS.
func WithOnVisit(fn func(n *automaton.Node, depth int) error) Option {
	return func(o *BFSOptions) {
		if fn != nil {
			o.OnVisit = fn
		}
	}
}

// BFSResult holds the outcome of a BFS traversal:
//   - Order: nodes visited, in visit sequence.
//   - Depth: node id → distance (in edges) from the nearest start.
//   - Parent: node id → predecessor in the BFS forest (absent for starts).
type BFSResult struct {
	Order  []automaton.NodeID
	Depth  map[automaton.NodeID]int
	Parent map[automaton.NodeID]automaton.NodeID
}

// Reached reports whether id was visited.
func (r *BFSResult) Reached(id automaton.NodeID) bool {
	_, ok := r.Depth[id]
	return ok
}

// PathTo reconstructs the path from a start node to dest.
// Returns an error if dest was not reached.
func (r *BFSResult) PathTo(dest automaton.NodeID) ([]automaton.NodeID, error) {
	if _, ok := r.Depth[dest]; !ok {
		return nil, fmt.Errorf("bfs: no path to node %d", dest)
	}
	path := []automaton.NodeID{}
	for cur := dest; ; {
		path = append(path, cur)
		prev, ok := r.Parent[cur]
		if !ok {
			break
		}
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, nil
}
