// Package symbolic is the boolean-function layer of gr1synth: a thin, typed
// adapter over the rudd BDD library that speaks in terms of game states
// rather than raw variable levels.
//
// What
//
//   - A Manager owns one BDD universe with 2·(numEnv+numSys) variables.
//     Levels [0, w) are the current-state variables (environment first, then
//     system); levels [w, 2w) are their primed (next-state) copies.
//   - Set is an opaque handle to a boolean function in that universe.
//   - Boolean connectives, ∃/∀ over named variable groups, cofactoring by a
//     partial assignment, the fixed unprimed↔primed remap, cube enumeration
//     with explicit don't-care expansion, and equivalence testing.
//
// Ownership
//
//	Set values are ordinary Go values. rudd keeps its node table reachable
//	from live handles and reclaims the rest through the Go garbage
//	collector, so there is no reference count to release on any exit path.
//
// Errors
//
//	Operations never panic on failure. The first failing operation records
//	a sticky error (ErrOperation) on the Manager and every later call
//	returns an invalid Set. Callers check Manager.Err at loop boundaries.
//
// Concurrency
//
//	A Manager and all Sets it produced must be used from one goroutine at a
//	time. Independent Managers share nothing.
package symbolic
