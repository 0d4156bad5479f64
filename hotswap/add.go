package hotswap

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/solve"
	"github.com/katalvlaran/gr1synth/spec"
	"github.com/katalvlaran/gr1synth/symbolic"
)

// AddSysGoal inserts goal into the goal cycle of a strategy for s.
//
// The new goal goes right after the existing goal i* nearest to it under
// the configured Metric, or after the last goal when there is none. Nodes
// entered right after goal i* is secured are rerouted through a local game
// into the new goal, and the states reached there through a second local
// game back to the nodes entered after goal i*+1. Goal modes above i* move
// up by one; the first game's nodes take mode i*+1 and the second's the
// mode after it.
//
// The work happens on a clone: on any error store is left untouched.
//
// Errors:
//   - ErrUnsupported with fewer than two declared goals or a width mismatch.
//   - ErrGoalModeAbsent when no node is entered after goal i* or i*+1.
//   - ErrSwapInfeasible (wrapping solve.ErrNoLocalStrategy).
//   - solve.ErrAlgebraOpFailed / solve.ErrInternalInconsistency.
func AddSysGoal(s *spec.Spec, store *automaton.Store, goal symbolic.Set, opts ...Option) (res *Result, err error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(o.Ctx, "AddSysGoal")
	defer span.End()
	defer func() { record("add", span, err) }()
	start := time.Now()

	m := s.Manager()
	if store == nil || store.Width() != m.Width() {
		return nil, fmt.Errorf("%w: strategy does not match the spec width", ErrUnsupported)
	}
	goals := s.DeclaredSysGoals()
	n := len(goals)
	if n < 2 {
		return nil, fmt.Errorf("%w: insertion needs at least 2 declared goals, have %d", ErrUnsupported, n)
	}
	after, err := insertionPoint(goals, goal, o.Metric)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("after", after), attribute.Int("goals", n))
	log := o.Logger.With(slog.String("op", "add_sys_goal"))

	out := store.Clone()
	first := enteredAfter(out, after)
	second := enteredAfter(out, (after+1)%n)
	inFirst := make(map[automaton.NodeID]bool, len(first))
	for _, v := range first {
		inFirst[v.ID] = true
	}
	second = slices.DeleteFunc(second, func(v *automaton.Node) bool { return inFirst[v.ID] })
	if len(first) == 0 || len(second) == 0 {
		return nil, fmt.Errorf("%w: no node entered after goal %d or %d", ErrGoalModeAbsent, after, (after+1)%n)
	}
	log.Debug("insertion point",
		slog.Int("after", after),
		slog.Int("entered_first", len(first)),
		slog.Int("entered_second", len(second)))

	sp := &splicer{
		ctx: ctx, store: out, game: solve.GameOf(s), log: log,
		toMode: n + 1, fromMode: n + 2,
	}
	reached, orphans, err := sp.intoGoal(first, goal)
	if err != nil {
		return nil, err
	}
	if err := sp.outOfGoal(reached, second); err != nil {
		return nil, err
	}
	pruned, err := out.ForwardPrune(orphans)
	if err != nil {
		return nil, err
	}

	for _, v := range out.Nodes() {
		mode := v.Mode
		switch {
		case mode == sp.toMode:
			mode = after + 1
		case mode == sp.fromMode:
			mode = (after + 2) % (n + 1)
		case mode > after && mode < n:
			mode++
		}
		if err := out.SetMode(v.ID, mode); err != nil {
			return nil, err
		}
	}

	ns, err := s.WithSysGoalInserted(after+1, goal)
	if err != nil {
		return nil, err
	}
	log.Info("system goal inserted",
		slog.Int("index", after+1),
		slog.Int("nodes", out.Len()),
		slog.Int("pruned", pruned),
		slog.Duration("elapsed", time.Since(start)))
	return &Result{Store: out, Spec: ns, Index: after + 1}, nil
}

// insertionPoint returns the goal with the least metric distance to goal,
// first on ties, or the last goal without a metric. Empty goals are
// skipped.
func insertionPoint(goals []symbolic.Set, goal symbolic.Set, mt *Metric) (int, error) {
	if mt == nil {
		return len(goals) - 1, nil
	}
	best, bestDist := len(goals)-1, -1
	for i, g := range goals {
		lo, _, ok, err := mt.Bounds(g, goal)
		if err != nil {
			return 0, fmt.Errorf("%w: metric bounds: %w", solve.ErrAlgebraOpFailed, err)
		}
		if ok && (bestDist < 0 || lo < bestDist) {
			best, bestDist = i, lo
		}
	}
	return best, nil
}

// enteredAfter returns, in id order, the nodes some edge enters while
// passing the point right after goal i in the goal cycle.
func enteredAfter(s *automaton.Store, i int) []*automaton.Node {
	hit := make(map[automaton.NodeID]bool)
	for _, u := range s.Nodes() {
		for _, t := range u.Trans {
			if v := s.MustGet(t); crosses(u.Mode, v.Mode, i) {
				hit[v.ID] = true
			}
		}
	}
	var out []*automaton.Node
	for _, v := range s.Nodes() {
		if hit[v.ID] {
			out = append(out, v)
		}
	}
	return out
}

// crosses reports whether an edge from mode a to mode b passes goal i.
func crosses(a, b, i int) bool {
	switch {
	case a < b:
		return a <= i && b > i
	case a > b:
		return b > i || a <= i
	}
	return false
}

// splicer grafts the two local games of an insertion onto a store.
// Nodes of the first game carry toMode and those of the second fromMode
// until the final relabelling.
type splicer struct {
	ctx      context.Context
	store    *automaton.Store
	game     *solve.Game
	log      *slog.Logger
	toMode   int
	fromMode int
}

// intoGoal reroutes the entered nodes into goal. It returns the nodes
// that reached goal, which are left without edges, and the old successors
// of the rerouted nodes.
func (sp *splicer) intoGoal(entered []*automaton.Node, goal symbolic.Set) ([]*automaton.Node, []automaton.NodeID, error) {
	s, m := sp.store, sp.game.Manager()
	local, err := localGame(sp.ctx, sp.game, stateSet(m, entered), goal, sp.log, "into new goal")
	if err != nil {
		return nil, nil, err
	}
	remap, err := s.Absorb(local)
	if err != nil {
		return nil, nil, err
	}

	inEntered := make(map[automaton.NodeID]bool, len(entered))
	for _, v := range entered {
		inEntered[v.ID] = true
	}
	var orphans []automaton.NodeID
	merged := make(map[string]automaton.NodeID)
	for _, v := range entered {
		for _, t := range v.Trans {
			if !inEntered[t] {
				orphans = append(orphans, t)
			}
		}
		if err := sp.adopt(v, local, remap, merged); err != nil {
			return nil, nil, err
		}
		if err := s.SetMode(v.ID, sp.toMode); err != nil {
			return nil, nil, err
		}
	}
	if err := sp.markLocal(local, remap, sp.toMode); err != nil {
		return nil, nil, err
	}

	var reached []*automaton.Node
	for _, v := range s.Nodes() {
		if v.Mode == sp.toMode && len(v.Trans) == 0 {
			reached = append(reached, v)
		}
	}
	sp.log.Debug("new goal reached", slog.Int("local_nodes", local.Len()), slog.Int("reached", len(reached)))
	return reached, orphans, nil
}

// outOfGoal leads the reached nodes back to the nodes entered after the
// goal following the new one.
func (sp *splicer) outOfGoal(reached, exits []*automaton.Node) error {
	s, m := sp.store, sp.game.Manager()
	local, err := localGame(sp.ctx, sp.game, stateSet(m, reached), stateSet(m, exits), sp.log, "out of new goal")
	if err != nil {
		return err
	}
	remap, err := s.Absorb(local)
	if err != nil {
		return err
	}

	exitByState := firstByState(exits)
	resolved := make(map[string]automaton.NodeID)
	for _, ln := range local.Nodes() {
		if len(ln.Trans) > 0 {
			continue
		}
		k := ln.State.String()
		x, ok := exitByState[k]
		if !ok {
			return fmt.Errorf("%w: local terminal %s has no exit node", solve.ErrInternalInconsistency, ln.State)
		}
		nid := remap[ln.ID]
		if err := s.ReplaceTransitions(nid, x.ID); err != nil {
			return err
		}
		if err := s.Delete(nid); err != nil {
			return err
		}
		resolved[k] = x.ID
	}

	merged := make(map[string]automaton.NodeID)
	for _, r := range reached {
		if x, ok := resolved[r.State.String()]; ok {
			if r.Initial {
				s.MustGet(x).Initial = true
			}
			if err := s.ReplaceTransitions(r.ID, x); err != nil {
				return err
			}
			if err := s.Delete(r.ID); err != nil {
				return err
			}
			continue
		}
		if err := sp.adopt(r, local, remap, merged); err != nil {
			return err
		}
		if err := s.SetMode(r.ID, sp.fromMode); err != nil {
			return err
		}
	}
	return sp.markLocal(local, remap, sp.fromMode)
}

// adopt makes v stand in for the local node with its state: v takes the
// local node's edges and rank and the local node is deleted. A second node
// with the same state copies the edges of the first.
func (sp *splicer) adopt(v *automaton.Node, local *automaton.Store, remap map[automaton.NodeID]automaton.NodeID, merged map[string]automaton.NodeID) error {
	s := sp.store
	k := v.State.String()
	if rep, ok := merged[k]; ok {
		rn := s.MustGet(rep)
		v.Trans = slices.Clone(rn.Trans)
		v.Rank = rn.Rank
		return nil
	}
	lid, ok := local.Find(solve.ReachMode, v.State)
	if !ok {
		return fmt.Errorf("%w: %s missing from local strategy", solve.ErrInternalInconsistency, v.State)
	}
	cid := remap[lid]
	if err := s.ReplaceTransitions(cid, v.ID); err != nil {
		return err
	}
	c := s.MustGet(cid)
	v.Trans = slices.Clone(c.Trans)
	v.Rank = c.Rank
	if err := s.Delete(cid); err != nil {
		return err
	}
	merged[k] = v.ID
	return nil
}

// markLocal gives the surviving absorbed nodes of local the given mode.
func (sp *splicer) markLocal(local *automaton.Store, remap map[automaton.NodeID]automaton.NodeID, mode int) error {
	for _, ln := range local.Nodes() {
		nid := remap[ln.ID]
		if !sp.store.Has(nid) {
			continue
		}
		if err := sp.store.SetMode(nid, mode); err != nil {
			return err
		}
	}
	return nil
}
