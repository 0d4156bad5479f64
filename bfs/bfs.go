// Package bfs provides breadth-first search over an automaton.Store,
// returning hop distances, parent links, and visit order.
//
// BFS explores nodes in increasing distance from a set of start nodes,
// with an optional visit hook.
package bfs

import (
	"context"
	"fmt"

	"github.com/katalvlaran/gr1synth/automaton"
)

// queueItem pairs a node id with its BFS depth.
type queueItem struct {
	id    automaton.NodeID
	depth int
}

// walker encapsulates mutable BFS state.
type walker struct {
	store *automaton.Store
	opts  BFSOptions
	ctx   context.Context
	queue []queueItem
	res   *BFSResult
}

// BFS runs breadth-first search on s from every id in starts,
// applying any number of functional Options.
// Returns ErrStoreNil or ErrStartNotFound for invalid input, or any
// OnVisit error.
func BFS(s *automaton.Store, starts []automaton.NodeID, opts ...Option) (*BFSResult, error) {
	if s == nil {
		return nil, ErrStoreNil
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	for _, id := range starts {
		if !s.Has(id) {
			return nil, fmt.Errorf("%w: %d", ErrStartNotFound, id)
		}
	}

	n := s.Len()
	w := &walker{
		store: s,
		opts:  o,
		ctx:   o.Ctx,
		queue: make([]queueItem, 0, n),
		res: &BFSResult{
			Order:  make([]automaton.NodeID, 0, n),
			Depth:  make(map[automaton.NodeID]int, n),
			Parent: make(map[automaton.NodeID]automaton.NodeID, n),
		},
	}
	for _, id := range starts {
		if !w.res.Reached(id) {
			w.enqueue(id, 0, automaton.None)
		}
	}
	return w.res, w.loop()
}

// enqueue records id at depth d with its parent and adds it to the queue.
func (w *walker) enqueue(id automaton.NodeID, d int, parent automaton.NodeID) {
	w.res.Depth[id] = d
	if parent != automaton.None {
		w.res.Parent[id] = parent
	}
	w.queue = append(w.queue, queueItem{id: id, depth: d})
}

// loop processes the queue until empty, error, or cancellation.
func (w *walker) loop() error {
	for len(w.queue) > 0 {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		item := w.queue[0]
		w.queue = w.queue[1:]
		node := w.store.MustGet(item.id)
		w.res.Order = append(w.res.Order, item.id)
		if err := w.opts.OnVisit(node, item.depth); err != nil {
			return fmt.Errorf("bfs: OnVisit error at node %d: %w", item.id, err)
		}
		w.enqueueNeighbors(node, item.depth)
	}
	return nil
}

// enqueueNeighbors enqueues each unseen live successor.
func (w *walker) enqueueNeighbors(node *automaton.Node, depth int) {
	for _, to := range node.Trans {
		if w.res.Reached(to) || !w.store.Has(to) {
			continue
		}
		w.enqueue(to, depth+1, node.ID)
	}
}

// TrimUnreachable deletes every node that cannot be reached from an
// initial node and returns how many were deleted.
func TrimUnreachable(s *automaton.Store, opts ...Option) (int, error) {
	if s == nil {
		return 0, ErrStoreNil
	}
	res, err := BFS(s, s.Initial(), opts...)
	if err != nil {
		return 0, err
	}
	var doomed []automaton.NodeID
	for _, id := range s.IDs() {
		if !res.Reached(id) {
			doomed = append(doomed, id)
		}
	}
	if err := s.DeleteSet(doomed); err != nil {
		return 0, err
	}
	return len(doomed), nil
}
