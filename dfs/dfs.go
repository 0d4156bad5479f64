package dfs

import (
	"fmt"

	"github.com/katalvlaran/gr1synth/automaton"
)

// dfsWalker encapsulates state during DFS.
type dfsWalker struct {
	store *automaton.Store
	opts  DFSOptions
	res   *DFSResult
}

// DFS performs depth-first search on s from start.
// Returns DFSResult or an error if aborted by context or hook.
func DFS(s *automaton.Store, start automaton.NodeID, opts ...Option) (*DFSResult, error) {
	if s == nil {
		return nil, ErrStoreNil
	}
	dopts := DefaultOptions()
	for _, fn := range opts {
		fn(&dopts)
	}
	if !s.Has(start) {
		return nil, fmt.Errorf("%w: %d", ErrStartNotFound, start)
	}

	n := s.Len()
	res := &DFSResult{
		Order:   make([]automaton.NodeID, 0, n),
		Depth:   make(map[automaton.NodeID]int, n),
		Parent:  make(map[automaton.NodeID]automaton.NodeID, n),
		Visited: make(map[automaton.NodeID]bool, n),
	}
	w := &dfsWalker{store: s, opts: dopts, res: res}

	if err := w.traverse(s.MustGet(start), 0); err != nil {
		return res, err
	}
	res.SkippedNeighbors = w.opts.SkippedNeighbors

	return res, nil
}

// traverse visits node at the given depth and recurses into successors.
func (w *dfsWalker) traverse(node *automaton.Node, depth int) error {
	select {
	case <-w.opts.Ctx.Done():
		return w.opts.Ctx.Err()
	default:
	}

	w.res.Visited[node.ID] = true
	w.res.Depth[node.ID] = depth

	if w.opts.OnVisit != nil {
		if err := w.opts.OnVisit(node); err != nil {
			w.res.Order = nil

			return fmt.Errorf("dfs: OnVisit hook for node %d: %w", node.ID, err)
		}
	}

	for _, to := range node.Trans {
		next, ok := w.store.Get(to)
		if !ok {
			continue
		}
		if w.opts.FilterNeighbor != nil && !w.opts.FilterNeighbor(node, next) {
			w.opts.SkippedNeighbors++
			continue
		}
		if !w.res.Visited[to] {
			w.res.Parent[to] = node.ID
			if err := w.traverse(next, depth+1); err != nil {
				return err
			}
		}
	}

	w.res.Order = append(w.res.Order, node.ID)

	return nil
}

// Reach returns the ids reachable from start through edges accepted by
// filter, in discovery order. start itself is listed only when it lies on
// such a cycle. A nil filter accepts every edge.
func Reach(s *automaton.Store, start automaton.NodeID, filter func(curr, next *automaton.Node) bool) ([]automaton.NodeID, error) {
	var out []automaton.NodeID
	loop := false
	accept := func(curr, next *automaton.Node) bool {
		if filter != nil && !filter(curr, next) {
			return false
		}
		if next.ID == start && !loop {
			loop = true
			out = append(out, start)
		}
		return true
	}
	visit := func(n *automaton.Node) error {
		if n.ID != start {
			out = append(out, n.ID)
		}
		return nil
	}
	if _, err := DFS(s, start, WithOnVisit(visit), WithFilterNeighbor(accept)); err != nil {
		return nil, err
	}
	return out, nil
}
