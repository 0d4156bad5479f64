// Package gr1synth synthesizes reactive controllers from GR(1)
// specifications and keeps those controllers up to date without solving
// the whole game again.
//
// A specification names boolean environment and system variables, their
// initial conditions, transition rules and liveness goals. The packages
// below turn it into a strategy automaton and edit that automaton in
// place:
//
//	symbolic/    BDD-backed state sets over unprimed and primed variables
//	spec/        YAML specification documents and the formula compiler
//	solve/       CPre, winning set, realizability, sublevels, extraction,
//	             local reachability games and strategy verification
//	automaton/   strategy automaton store with gr1c, JSON and DOT codecs
//	bfs/, dfs/   traversals over the automaton (pruning, reachability)
//	patch/       local repair after transition relation edits
//	hotswap/     system goal insertion and removal
//	strategydb/  BadgerDB repository of strategies keyed by spec digest
//	metrics/     Prometheus collectors for the solvers and editors
//
// The gr1synth command in cmd/gr1synth exposes all of it on the command
// line.
//
// Quick example:
//
//	s, _, _ := spec.LoadFile("arbiter.yaml")
//	res, _ := solve.Synthesize(s)
//	if res.Realizable {
//		_ = automaton.WriteGR1C(os.Stdout, res.Strategy, automaton.GR1CVersion1)
//	}
package gr1synth
