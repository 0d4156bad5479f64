// Package solve implements GR(1) game solving and strategy extraction over
// the symbolic layer.
//
// What
//
//   - Game.CPre: the controllable predecessor ∀e'.(ET → ∃s'.(ST ∧ C')).
//   - WinningSet: the nested ν Z / μ Y / ν X fixpoint; W = ⋁ Z_i.
//   - CheckRealizable / Realizable: the verdict for the active init mode.
//   - ComputeSublevels: the per-goal rank chain Y[i][j] with the X sets
//     retained at every level.
//   - Synthesize: work-list extraction of a strategy automaton whose nodes
//     carry a goal mode and a rank.
//   - ReachGame: a bounded reachability game from Entry to Exit inside a
//     region, used by the local patcher and the goal hot-swapper.
//   - Verify: an explicit check of safety, move coverage and rank progress.
//
// Determinism
//
//	Minterms are enumerated in the engine's order with don't-cares read
//	as false when a single successor is needed, and the work list is LIFO,
//	so the same spec always yields the same automaton.
//
// Concurrency
//
//	A Game shares its symbolic.Manager with the spec and is not safe for
//	concurrent use. Cancellation is checked between whole fixpoint sweeps,
//	between sublevels and between work-list pops, never mid-fixpoint.
//
// Errors
//
//   - ErrAlgebraOpFailed        on a failure of the symbolic engine (fatal).
//   - ErrInternalInconsistency  when a proven invariant does not hold.
//   - ErrNoLocalStrategy        when ReachGame cannot cover Entry.
//   - ErrOptionViolation        for an invalid Option.
//
// Unrealizability is not an error: Result.Realizable is false.
package solve
