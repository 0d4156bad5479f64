package dfs

import (
	"context"
	"errors"

	"github.com/katalvlaran/gr1synth/automaton"
)

var (
	// ErrStoreNil is returned when a nil *automaton.Store is passed to DFS.
	ErrStoreNil = errors.New("dfs: store is nil")

	// ErrStartNotFound indicates that the start id is not a live node.
	ErrStartNotFound = errors.New("dfs: start node not found")
)

// Option configures optional behavior of DFS traversal.
type Option func(*DFSOptions)

// DFSOptions holds configurable parameters for DFS traversal.
// Complexity remains O(V+E) when filters and hooks are O(1).
type DFSOptions struct {
	// Ctx allows cancellation or timeouts; defaults to context.Background().
	Ctx context.Context

	// OnVisit, if non-nil, is invoked when a node is discovered (pre-order).
	// Returning an error aborts traversal with that error.
	OnVisit func(n *automaton.Node) error

	// FilterNeighbor, if non-nil, is called for each edge curr→next before
	// recursing. Return false to skip next.
	FilterNeighbor func(curr, next *automaton.Node) bool

	// SkippedNeighbors counts edges skipped by FilterNeighbor.
	SkippedNeighbors int
}

// DefaultOptions returns a DFSOptions struct with:
//   - Background context
//   - No pre-order hook
//   - No edge filtering
func DefaultOptions() DFSOptions {
	return DFSOptions{Ctx: context.Background()}
}

// WithContext sets the Context for DFS traversal.
// Passing a nil context has no effect.
func WithContext(ctx context.Context) Option {
	return func(o *DFSOptions) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithOnVisit installs fn as a pre-order hook.
func WithOnVisit(fn func(n *automaton.Node) error) Option {
	return func(o *DFSOptions) { o.OnVisit = fn }
}

// WithFilterNeighbor skips edges curr→next for which fn returns false.
func WithFilterNeighbor(fn func(curr, next *automaton.Node) bool) Option {
	return func(o *DFSOptions) { o.FilterNeighbor = fn }
}

// DFSResult captures the outcome of a depth-first traversal.
type DFSResult struct {
	// Order records nodes in the sequence they finished (post-order).
	Order []automaton.NodeID

	// Depth maps each visited id to its tree depth.
	Depth map[automaton.NodeID]int

	// Parent maps each id to the node it was first discovered from.
	// Roots do not appear.
	Parent map[automaton.NodeID]automaton.NodeID

	// Visited flags which nodes were reached.
	Visited map[automaton.NodeID]bool

	// SkippedNeighbors reports how many edges FilterNeighbor rejected.
	SkippedNeighbors int
}
