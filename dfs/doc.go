// Package dfs implements depth-first search over an automaton.Store.
//
// What
//
//   - DFS explores as far as possible along each transition before
//     backtracking. It supports a pre-order hook, cancellation via
//     context.Context and edge filtering.
//   - Reach lists the nodes reachable from one node through accepted edges.
//     The local patcher uses it to find every node still reachable inside
//     a goal mode.
//
// Determinism
//
//	Successors are explored in Trans order.
//
// Complexity (V = live nodes, E = edges)
//
//   - Time:   O(V + E)
//   - Memory: O(V) plus recursion depth
//
// Errors
//
//   - ErrStoreNil       if the store pointer is nil.
//   - ErrStartNotFound  if the start id is not a live node.
//   - Wrapped OnVisit errors, or ctx.Err() on cancellation.
package dfs
