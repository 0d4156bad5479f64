// Package bfs provides breadth-first search over an automaton.Store.
//
// What
//
//   - Explore nodes in non-decreasing hop distance from a set of starts.
//   - Returns a BFSResult containing:
//   - Order: visit sequence
//   - Depth: node id → distance (edges) from the nearest start
//   - Parent: node id → its predecessor in the BFS forest
//   - OnVisit hook (may abort with an error). Verify runs its checks from
//     it and uses PathTo to report how a bad node is reached.
//   - TrimUnreachable removes nodes not reachable from any initial node.
//
// Determinism
//
//	Starts are enqueued in the order given and successors in Trans order,
//	so the visit sequence is fully reproducible.
//
// Complexity (V = live nodes, E = edges)
//
//   - Time:   O(V + E)
//   - Memory: O(V)
//
// Usage
//
//	res, err := bfs.BFS(store, store.Initial(),
//	    bfs.WithContext(ctx),
//	    bfs.WithOnVisit(func(n *automaton.Node, depth int) error {
//	        if len(n.Trans) == 0 {
//	            return errDeadEnd
//	        }
//	        return nil
//	    }),
//	)
//	path, _ := res.PathTo(id)
//
// Errors
//
//   - ErrStoreNil         if the store pointer is nil.
//   - ErrStartNotFound    if a start id is not a live node.
//   - Wrapped OnVisit errors.
package bfs
