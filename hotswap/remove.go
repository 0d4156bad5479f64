package hotswap

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/solve"
	"github.com/katalvlaran/gr1synth/spec"
)

// RemoveSysGoal drops goal d from the goal cycle of a strategy for s.
//
// Nodes in mode d and in the mode after it are replaced by one local game
// that leads every point entering those modes to the nodes they used to
// exit to. The local nodes pursue the goal after d. Modes above d move
// down by one.
//
// The work happens on a clone: on any error store is left untouched.
//
// Errors:
//   - ErrUnsupported when d is out of range, fewer than three goals are
//     declared, or an initial node carries mode d or the mode after it.
//   - ErrGoalModeAbsent when no node carries either mode.
//   - ErrSwapInfeasible (wrapping solve.ErrNoLocalStrategy).
//   - solve.ErrAlgebraOpFailed / solve.ErrInternalInconsistency.
func RemoveSysGoal(s *spec.Spec, store *automaton.Store, d int, opts ...Option) (res *Result, err error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(o.Ctx, "RemoveSysGoal")
	defer span.End()
	defer func() { record("remove", span, err) }()
	start := time.Now()

	m := s.Manager()
	if store == nil || store.Width() != m.Width() {
		return nil, fmt.Errorf("%w: strategy does not match the spec width", ErrUnsupported)
	}
	n := len(s.DeclaredSysGoals())
	if d < 0 || d >= n {
		return nil, fmt.Errorf("%w: goal index %d outside [0,%d)", ErrUnsupported, d, n)
	}
	if n < 3 {
		return nil, fmt.Errorf("%w: removal needs at least 3 declared goals, have %d", ErrUnsupported, n)
	}
	next := (d + 1) % n
	span.SetAttributes(attribute.Int("goal", d), attribute.Int("goals", n))
	dropped := func(mode int) bool { return mode == d || mode == next }

	count := 0
	for _, v := range store.Nodes() {
		if !dropped(v.Mode) {
			continue
		}
		if v.Initial {
			return nil, fmt.Errorf("%w: initial node %d carries mode %d", ErrUnsupported, v.ID, v.Mode)
		}
		count++
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: no node in mode %d or %d", ErrGoalModeAbsent, d, next)
	}
	log := o.Logger.With(slog.String("op", "remove_sys_goal"))

	out := store.Clone()
	var entries, exits []*automaton.Node
	seen := make(map[automaton.NodeID]bool)
	for _, u := range out.Nodes() {
		for _, t := range u.Trans {
			v := out.MustGet(t)
			if seen[v.ID] || dropped(u.Mode) == dropped(v.Mode) {
				continue
			}
			seen[v.ID] = true
			if dropped(v.Mode) {
				entries = append(entries, v)
			} else {
				exits = append(exits, v)
			}
		}
	}
	log.Debug("local game", slog.Int("entry", len(entries)), slog.Int("exit", len(exits)))

	local, err := localGame(ctx, solve.GameOf(s), stateSet(m, entries), stateSet(m, exits), log, "bridge removed goal")
	if err != nil {
		return nil, err
	}
	remap, err := out.Absorb(local)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		lid, ok := local.Find(solve.ReachMode, e.State)
		if !ok {
			return nil, fmt.Errorf("%w: entry %s missing from local strategy", solve.ErrInternalInconsistency, e.State)
		}
		if err := out.ReplaceTransitions(e.ID, remap[lid]); err != nil {
			return nil, err
		}
	}
	exitByState := firstByState(exits)
	for _, ln := range local.Nodes() {
		if len(ln.Trans) > 0 {
			continue
		}
		x, ok := exitByState[ln.State.String()]
		if !ok {
			return nil, fmt.Errorf("%w: local terminal %s has no exit node", solve.ErrInternalInconsistency, ln.State)
		}
		nid := remap[ln.ID]
		if err := out.ReplaceTransitions(nid, x.ID); err != nil {
			return nil, err
		}
		if err := out.Delete(nid); err != nil {
			return nil, err
		}
	}

	var doomed []automaton.NodeID
	for _, v := range out.Nodes() {
		if dropped(v.Mode) {
			doomed = append(doomed, v.ID)
		}
	}
	if err := out.DeleteSet(doomed); err != nil {
		return nil, err
	}
	for _, ln := range local.Nodes() {
		if nid := remap[ln.ID]; out.Has(nid) {
			if err := out.SetMode(nid, next); err != nil {
				return nil, err
			}
		}
	}
	for _, v := range out.Nodes() {
		if v.Mode > d {
			if err := out.SetMode(v.ID, v.Mode-1); err != nil {
				return nil, err
			}
		}
	}

	ns, err := s.WithSysGoalRemoved(d)
	if err != nil {
		return nil, err
	}
	log.Info("system goal removed",
		slog.Int("index", d),
		slog.Int("nodes", out.Len()),
		slog.Int("deleted", len(doomed)),
		slog.Duration("elapsed", time.Since(start)))
	return &Result{Store: out, Spec: ns, Index: d}, nil
}
