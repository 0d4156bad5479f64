// Package automaton stores finite-state strategy automata and reads and
// writes them in the gr1c text, gr1c JSON and Graphviz DOT formats.
//
// An automaton is a directed graph of nodes. Each node carries
//
//   - State: the assignment to the environment and system variables;
//   - Mode: the index of the system goal currently pursued;
//   - Rank: the sublevel ("reach annotation") the state was found at;
//   - Initial: whether execution may start here;
//   - Trans: ids of successor nodes.
//
// The pair (Mode, State) identifies a node. Store keeps nodes in an arena
// with stable integer ids and a hash index on that pair:
//
//	Insert(mode, rank, initial, state) (NodeID, error)   // O(w)
//	Find(mode, state) (NodeID, bool)                      // O(w) expected
//	AddEdge(from, to) error                               // O(1)
//	Delete(id) error                                      // O(V+E), drops incoming edges
//	ReplaceTransitions(old, repl) error                   // O(E)
//	PruneDeadEnds(keep) (int, error)
//	ForwardPrune(candidates) (int, error)
//	Clone() / Absorb(other) / Compact()
//
// Deletion never leaves a dangling edge: the node's incoming edges are
// removed in the same call. Redirect edges with ReplaceTransitions before
// deleting a node that is being replaced.
//
// Serializers number nodes by position in Nodes() order, so a written
// automaton always has dense ids 0..n-1.
package automaton
