// File: store.go
// Role: Arena storage of automaton nodes with a (mode, state) index.
//
// Determinism:
//   - Nodes() and IDs() enumerate live nodes in ascending id order, which
//     is insertion order.
//   - Find returns the newest live node for a (mode, state) pair.
//
// Concurrency:
//   - A Store is not safe for concurrent mutation.
package automaton

import (
	"fmt"
	"slices"
)

// Store is an automaton: an arena of nodes addressed by NodeID.
//
// Deleted slots become tombstones; their ids are never reused. Deleting a
// node removes every edge into it in the same call, so no public operation
// leaves a dangling edge behind.
type Store struct {
	width int
	nodes []*Node // nil = tombstone
	index map[key][]NodeID
	live  int
}

// NewStore returns an empty Store for states of the given width.
func NewStore(width int) *Store {
	return &Store{
		width: width,
		index: make(map[key][]NodeID),
	}
}

// Width returns the state length every node must have.
func (s *Store) Width() int { return s.width }

// Len returns the number of live nodes.
func (s *Store) Len() int { return s.live }

// Cap returns one past the largest id ever issued.
func (s *Store) Cap() int { return len(s.nodes) }

// Insert adds a node without checking for an existing (mode, state) node.
// Callers that need uniqueness check with Find first.
//
// Complexity: O(width) amortized.
func (s *Store) Insert(mode, rank int, initial bool, state State) (NodeID, error) {
	if len(state) != s.width {
		return None, fmt.Errorf("%w: want %d, got %d", ErrStateWidth, s.width, len(state))
	}
	id := NodeID(len(s.nodes))
	n := &Node{
		ID:      id,
		State:   state.Clone(),
		Mode:    mode,
		Rank:    rank,
		Initial: initial,
	}
	s.nodes = append(s.nodes, n)
	k := keyOf(mode, n.State)
	s.index[k] = append(s.index[k], id)
	s.live++
	return id, nil
}

// Get returns the live node with the given id.
//
// The returned node may be read freely and its Rank, Initial and Trans
// fields written; Mode and State must only change through SetMode.
func (s *Store) Get(id NodeID) (*Node, bool) {
	if id < 0 || int(id) >= len(s.nodes) || s.nodes[id] == nil {
		return nil, false
	}
	return s.nodes[id], true
}

// Has reports whether id names a live node.
func (s *Store) Has(id NodeID) bool {
	_, ok := s.Get(id)
	return ok
}

// MustGet is Get for ids the caller has just validated.
// It panics on a dead id.
func (s *Store) MustGet(id NodeID) *Node {
	n, ok := s.Get(id)
	if !ok {
		panic(fmt.Sprintf("automaton: dead node id %d", id))
	}
	return n
}

// Find returns the newest live node with the exact (mode, state) pair.
//
// Complexity: O(width) expected.
func (s *Store) Find(mode int, state State) (NodeID, bool) {
	ids := s.index[keyOf(mode, state)]
	if len(ids) == 0 {
		return None, false
	}
	return ids[len(ids)-1], true
}

// FindLinear is Find by exhaustive scan. It exists to cross-check the index.
//
// Complexity: O(V·width).
func (s *Store) FindLinear(mode int, state State) (NodeID, bool) {
	for i := len(s.nodes) - 1; i >= 0; i-- {
		n := s.nodes[i]
		if n != nil && n.Mode == mode && n.State.Equal(state) {
			return n.ID, true
		}
	}
	return None, false
}

// FindIndex returns the position of Find's result in Nodes() order, or -1.
func (s *Store) FindIndex(mode int, state State) int {
	id, ok := s.Find(mode, state)
	if !ok {
		return -1
	}
	pos := 0
	for i := 0; i < int(id); i++ {
		if s.nodes[i] != nil {
			pos++
		}
	}
	return pos
}

// FindState returns every live node whose state equals state, any mode.
func (s *Store) FindState(state State) []NodeID {
	var out []NodeID
	for _, n := range s.nodes {
		if n != nil && n.State.Equal(state) {
			out = append(out, n.ID)
		}
	}
	return out
}

// AddEdge appends an edge from → to.
func (s *Store) AddEdge(from, to NodeID) error {
	fn, ok := s.Get(from)
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNodeNotFound, from)
	}
	if !s.Has(to) {
		return fmt.Errorf("%w: id %d", ErrNodeNotFound, to)
	}
	fn.Trans = append(fn.Trans, to)
	return nil
}

// AppendTransition adds an edge between the nodes found for the two
// (mode, state) pairs.
func (s *Store) AppendTransition(fromMode int, fromState State, toMode int, toState State) error {
	from, ok := s.Find(fromMode, fromState)
	if !ok {
		return fmt.Errorf("%w: mode %d state %s", ErrNodeNotFound, fromMode, fromState)
	}
	to, ok := s.Find(toMode, toState)
	if !ok {
		return fmt.Errorf("%w: mode %d state %s", ErrNodeNotFound, toMode, toState)
	}
	return s.AddEdge(from, to)
}

// SetTrans replaces the outgoing edges of id. Every target must be live.
func (s *Store) SetTrans(id NodeID, trans []NodeID) error {
	n, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNodeNotFound, id)
	}
	for _, t := range trans {
		if !s.Has(t) {
			return fmt.Errorf("%w: edge target %d", ErrNodeNotFound, t)
		}
	}
	n.Trans = slices.Clone(trans)
	return nil
}

// SetMode changes the mode of id and keeps the index consistent.
func (s *Store) SetMode(id NodeID, mode int) error {
	n, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNodeNotFound, id)
	}
	if n.Mode == mode {
		return nil
	}
	s.unindex(n)
	n.Mode = mode
	k := keyOf(mode, n.State)
	s.index[k] = insertSorted(s.index[k], id)
	return nil
}

func insertSorted(ids []NodeID, id NodeID) []NodeID {
	i, _ := slices.BinarySearch(ids, id)
	return slices.Insert(ids, i, id)
}

func (s *Store) unindex(n *Node) {
	k := keyOf(n.Mode, n.State)
	ids := s.index[k]
	if i := slices.Index(ids, n.ID); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	}
	if len(ids) == 0 {
		delete(s.index, k)
	} else {
		s.index[k] = ids
	}
}

// Delete tombstones id and removes every edge into it.
//
// Complexity: O(V+E).
func (s *Store) Delete(id NodeID) error {
	return s.DeleteSet([]NodeID{id})
}

// DeleteSet tombstones every id in ids in one pass over the edges.
// Unknown or repeated ids are an error; nothing is deleted in that case.
func (s *Store) DeleteSet(ids []NodeID) error {
	doomed := make(map[NodeID]struct{}, len(ids))
	for _, id := range ids {
		if !s.Has(id) {
			return fmt.Errorf("%w: id %d", ErrNodeNotFound, id)
		}
		doomed[id] = struct{}{}
	}
	for id := range doomed {
		n := s.nodes[id]
		s.unindex(n)
		s.nodes[id] = nil
		s.live--
	}
	for _, n := range s.nodes {
		if n == nil {
			continue
		}
		n.Trans = slices.DeleteFunc(n.Trans, func(t NodeID) bool {
			_, gone := doomed[t]
			return gone
		})
	}
	return nil
}

// ReplaceTransitions redirects every edge into old so it points to
// replacement. With replacement == None the edges are dropped.
func (s *Store) ReplaceTransitions(old, replacement NodeID) error {
	if replacement != None && !s.Has(replacement) {
		return fmt.Errorf("%w: replacement id %d", ErrNodeNotFound, replacement)
	}
	for _, n := range s.nodes {
		if n == nil {
			continue
		}
		if replacement == None {
			n.Trans = slices.DeleteFunc(n.Trans, func(t NodeID) bool { return t == old })
			continue
		}
		for i, t := range n.Trans {
			if t == old {
				n.Trans[i] = replacement
			}
		}
	}
	return nil
}

// Nodes returns the live nodes in ascending id order.
func (s *Store) Nodes() []*Node {
	out := make([]*Node, 0, s.live)
	for _, n := range s.nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// IDs returns the live ids in ascending order.
func (s *Store) IDs() []NodeID {
	out := make([]NodeID, 0, s.live)
	for _, n := range s.nodes {
		if n != nil {
			out = append(out, n.ID)
		}
	}
	return out
}

// Successors returns the edge targets of id, or nil if id is dead.
func (s *Store) Successors(id NodeID) []NodeID {
	n, ok := s.Get(id)
	if !ok {
		return nil
	}
	return slices.Clone(n.Trans)
}

// Predecessors returns the distinct live nodes with an edge into id,
// ascending.
func (s *Store) Predecessors(id NodeID) []NodeID {
	var out []NodeID
	for _, n := range s.nodes {
		if n != nil && slices.Contains(n.Trans, id) {
			out = append(out, n.ID)
		}
	}
	return out
}

// Initial returns the ids of initial nodes, ascending.
func (s *Store) Initial() []NodeID {
	var out []NodeID
	for _, n := range s.nodes {
		if n != nil && n.Initial {
			out = append(out, n.ID)
		}
	}
	return out
}

// Clone returns a deep copy with identical ids.
func (s *Store) Clone() *Store {
	c := &Store{
		width: s.width,
		nodes: make([]*Node, len(s.nodes)),
		index: make(map[key][]NodeID, len(s.index)),
		live:  s.live,
	}
	for i, n := range s.nodes {
		if n == nil {
			continue
		}
		cp := *n
		cp.State = n.State.Clone()
		cp.Trans = slices.Clone(n.Trans)
		c.nodes[i] = &cp
	}
	for k, ids := range s.index {
		c.index[k] = slices.Clone(ids)
	}
	return c
}

// Absorb copies every live node of other into s under fresh ids and
// returns the mapping from other's ids to the new ones.
func (s *Store) Absorb(other *Store) (map[NodeID]NodeID, error) {
	if other.width != s.width {
		return nil, fmt.Errorf("%w: absorb width %d into %d", ErrStateWidth, other.width, s.width)
	}
	remap := make(map[NodeID]NodeID, other.live)
	for _, n := range other.Nodes() {
		id, err := s.Insert(n.Mode, n.Rank, n.Initial, n.State)
		if err != nil {
			return nil, err
		}
		remap[n.ID] = id
	}
	for _, n := range other.Nodes() {
		dst := s.nodes[remap[n.ID]]
		dst.Trans = make([]NodeID, 0, len(n.Trans))
		for _, t := range n.Trans {
			dst.Trans = append(dst.Trans, remap[t])
		}
	}
	return remap, nil
}

// Compact renumbers live nodes densely from 0, preserving order, and
// returns the old→new id mapping.
func (s *Store) Compact() map[NodeID]NodeID {
	remap := make(map[NodeID]NodeID, s.live)
	nodes := make([]*Node, 0, s.live)
	for _, n := range s.nodes {
		if n != nil {
			remap[n.ID] = NodeID(len(nodes))
			nodes = append(nodes, n)
		}
	}
	s.index = make(map[key][]NodeID, len(nodes))
	for _, n := range nodes {
		n.ID = remap[n.ID]
		for i, t := range n.Trans {
			n.Trans[i] = remap[t]
		}
		k := keyOf(n.Mode, n.State)
		s.index[k] = append(s.index[k], n.ID)
	}
	s.nodes = nodes
	return remap
}
