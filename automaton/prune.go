package automaton

import "slices"

// PruneDeadEnds deletes nodes with no outgoing edges until none remain and
// returns how many were deleted. Removing a node can turn its predecessors
// into dead ends, so the sweep repeats to a fixpoint. Nodes keep accepts
// are never deleted; a nil keep accepts none.
//
// Complexity: O(V·(V+E)) worst case.
func (s *Store) PruneDeadEnds(keep func(*Node) bool) (int, error) {
	removed := 0
	for {
		var dead []NodeID
		for _, n := range s.nodes {
			if n == nil || len(n.Trans) > 0 || (keep != nil && keep(n)) {
				continue
			}
			dead = append(dead, n.ID)
		}
		if len(dead) == 0 {
			return removed, nil
		}
		if err := s.DeleteSet(dead); err != nil {
			return removed, err
		}
		removed += len(dead)
	}
}

// ForwardPrune deletes candidates that are not initial and have no
// predecessor other than themselves. The successors of every deleted node
// become candidates in turn. Dead and repeated candidates are ignored.
// It returns the number of deleted nodes.
func (s *Store) ForwardPrune(candidates []NodeID) (int, error) {
	queue := slices.Clone(candidates)
	removed := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n, ok := s.Get(id)
		if !ok || n.Initial || s.hasForeignPredecessor(id) {
			continue
		}
		queue = append(queue, n.Trans...)
		if err := s.Delete(id); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *Store) hasForeignPredecessor(id NodeID) bool {
	for _, n := range s.nodes {
		if n != nil && n.ID != id && slices.Contains(n.Trans, id) {
			return true
		}
	}
	return false
}
