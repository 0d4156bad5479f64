// Package patch repairs a synthesized strategy after local edits of the
// game graph without re-solving the whole specification.
//
// What
//
//   - ParseChanges reads the edge-change text format: a neighborhood N of
//     states followed by restrict, relax and blocksys commands.
//   - Patch applies the changes to the transition relations, finds the
//     strategy nodes they invalidate and, per goal mode, solves a
//     reachability game inside N from the mode's entry points to nodes of
//     lower rank. The local strategy replaces the mode's nodes in N and the
//     ranks of the whole automaton are rescaled to keep them consistent.
//     The repaired clone is checked with solve.Verify against the edited
//     specification before it is returned.
//
// Only the transition-relation conjuncts that constrain some state of N
// take part in the local games.
//
// Errors
//
//   - ErrPatchInput       malformed input or an edit outside N.
//   - ErrPatchInfeasible  some mode cannot be repaired inside N, or the
//     repaired strategy lost an initial state or fails verification.
package patch
