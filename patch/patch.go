package patch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/dfs"
	"github.com/katalvlaran/gr1synth/metrics"
	"github.com/katalvlaran/gr1synth/solve"
	"github.com/katalvlaran/gr1synth/spec"
	"github.com/katalvlaran/gr1synth/symbolic"
)

var tracer = otel.Tracer("gr1synth.patch")

// Patch repairs a strategy after the edge changes, re-solving only inside
// the neighborhood n.
//
// For every goal mode holding a node the changes invalidate, a local
// reachability game leads the mode's entry points into the neighborhood
// back to nodes of lower rank, and the result is spliced in place of the
// mode's nodes inside n. An entry point is an initial node of the mode in
// n or any node of the mode in n with a predecessor outside that set,
// whatever the predecessor's mode. Dead ends are pruned at the end, except
// states the edited environment cannot move from, and the clone is
// verified against the edited game before it is returned.
//
// The work happens on a clone: on any error store is left untouched.
//
// Errors:
//   - ErrPatchInput for malformed changes or nodes outside n.
//   - ErrPatchInfeasible when a mode cannot be repaired locally (wrapping
//     solve.ErrNoLocalStrategy), when pruning removes an initial state, or
//     when the repaired strategy fails verification.
//   - solve.ErrAlgebraOpFailed / solve.ErrInternalInconsistency.
func Patch(s *spec.Spec, store *automaton.Store, n []automaton.State, changes []Change, opts ...Option) (res *Result, err error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	ctx, span := tracer.Start(o.Ctx, "Patch", trace.WithAttributes(
		attribute.Int("neighborhood", len(n)),
		attribute.Int("changes", len(changes)),
	))
	defer span.End()
	start := time.Now()
	defer func() {
		metrics.PatchTotal.WithLabelValues(outcome(err)).Inc()
		if err != nil {
			span.RecordError(err)
		}
	}()

	m := s.Manager()
	if store == nil || store.Width() != m.Width() {
		return nil, fmt.Errorf("%w: strategy does not match the spec width", ErrPatchInput)
	}

	region := m.False()
	inN := make(map[string]bool, len(n))
	for _, st := range n {
		if len(st) != m.Width() {
			return nil, fmt.Errorf("%w: neighborhood state %s has %d values, want %d",
				ErrPatchInput, st, len(st), m.Width())
		}
		region = m.Or(region, m.StateSet(st))
		inN[st.String()] = true
	}
	if err := validate(changes, inN, s.NumEnv(), s.NumSys()); err != nil {
		return nil, err
	}

	etN := localRelation(m, s.EnvTransParts(), n)
	stN := localRelation(m, s.SysTransParts(), n)
	et, st := s.EnvTrans(), s.SysTrans()
	for _, c := range changes {
		etN, stN = apply(m, c, etN, stN)
		et, st = apply(m, c, et, st)
	}
	if err := m.Err(); err != nil {
		return nil, fmt.Errorf("%w: edge changes: %w", solve.ErrAlgebraOpFailed, err)
	}

	out := store.Clone()
	if err := dropEnvEdges(out, changes, s.NumEnv()); err != nil {
		return nil, err
	}
	affected, err := affectedNodes(out, changes, inN, s.NumEnv())
	if err != nil {
		return nil, err
	}
	modes := make([]int, 0, len(affected))
	for mode := range affected {
		modes = append(modes, mode)
	}
	slices.Sort(modes)

	log := o.Logger.With(slog.String("op", "patch"))
	g := solve.NewGame(m, etN, stN, s.EnvGoals())
	for _, mode := range modes {
		p := &modePatcher{
			ctx: ctx, store: out, game: g, region: region, inN: inN,
			mode: mode, affected: affected[mode], log: log,
		}
		if err := p.run(); err != nil {
			return nil, err
		}
	}
	stuck := func(n *automaton.Node) bool { return m.IsFalse(m.CofactorState(et, n.State)) }
	pruned, err := out.PruneDeadEnds(stuck)
	if err != nil {
		return nil, err
	}

	edited := s.WithTrans(et, st)
	if err := check(ctx, edited, store, out, o.Logger); err != nil {
		return nil, err
	}
	log.Info("patch applied",
		slog.Any("modes", modes),
		slog.Int("nodes", out.Len()),
		slog.Int("pruned", pruned),
		slog.Duration("elapsed", time.Since(start)))
	return &Result{Store: out, Spec: edited, Modes: modes}, nil
}

// check rejects a repaired strategy that lost an initial state or that
// fails Verify against the edited spec.
func check(ctx context.Context, edited *spec.Spec, before, after *automaton.Store, log *slog.Logger) error {
	kept := make(map[string]bool)
	for _, id := range after.Initial() {
		kept[after.MustGet(id).State.String()] = true
	}
	for _, id := range before.Initial() {
		if st := before.MustGet(id).State; !kept[st.String()] {
			return fmt.Errorf("%w: initial state %s was pruned", ErrPatchInfeasible, st)
		}
	}
	rep, err := solve.Verify(edited, after, solve.WithContext(ctx), solve.WithLogger(log))
	if err != nil {
		return err
	}
	if !rep.OK() {
		return fmt.Errorf("%w: %d violations, first: %s", ErrPatchInfeasible, len(rep.Violations), rep.Violations[0])
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrPatchInfeasible):
		return "infeasible"
	case errors.Is(err, ErrPatchInput):
		return "input_error"
	default:
		return "error"
	}
}

// validate checks vector widths and that every edited edge starts, and
// for controlled edges ends, inside the neighborhood.
func validate(changes []Change, inN map[string]bool, numEnv, numSys int) error {
	width := numEnv + numSys
	for i, c := range changes {
		switch c.Kind {
		case BlockSys:
			if len(c.To) != numSys {
				return fmt.Errorf("%w: change %d: blocksys wants %d values", ErrPatchInput, i, numSys)
			}
			continue
		case Restrict, Relax:
		default:
			return fmt.Errorf("%w: change %d: unknown kind %s", ErrPatchInput, i, c.Kind)
		}
		want := numEnv
		if c.Controlled {
			want = width
		}
		if len(c.From) != width || len(c.To) != want {
			return fmt.Errorf("%w: change %d: %s has wrong widths", ErrPatchInput, i, c)
		}
		if !inN[c.From.String()] {
			return fmt.Errorf("%w: change %d: source %s outside neighborhood", ErrPatchInput, i, c.From)
		}
		if c.Controlled && !inN[c.To.String()] {
			return fmt.Errorf("%w: change %d: target %s outside neighborhood", ErrPatchInput, i, c.To)
		}
	}
	return nil
}

// localRelation conjoins the parts that constrain some neighborhood state.
func localRelation(m *symbolic.Manager, parts []symbolic.Set, n []automaton.State) symbolic.Set {
	rel := m.True()
	for _, part := range parts {
		for _, st := range n {
			if !m.IsTrue(m.CofactorState(part, st)) {
				rel = m.And(rel, part)
				break
			}
		}
	}
	return rel
}

// apply edits (et, st) by one change.
func apply(m *symbolic.Manager, c Change, et, st symbolic.Set) (symbolic.Set, symbolic.Set) {
	if c.Kind == BlockSys {
		return et, m.Diff(st, m.Cube(m.PrimedSysLevels(), c.To))
	}
	var to symbolic.Set
	if c.Controlled {
		to = m.PrimedStateSet(c.To)
	} else {
		to = m.Cube(m.PrimedEnvLevels(), c.To)
	}
	edge := m.And(m.StateSet(c.From), to)
	edit := func(rel symbolic.Set) symbolic.Set {
		if c.Kind == Restrict {
			return m.Diff(rel, edge)
		}
		return m.Or(rel, edge)
	}
	if c.Controlled {
		return et, edit(st)
	}
	return edit(et), st
}

// affectedNodes groups by mode the nodes whose outgoing edges a change
// invalidates. Relaxing a controlled edge or restricting an environment
// edge never invalidates a node.
func affectedNodes(s *automaton.Store, changes []Change, inN map[string]bool, numEnv int) (map[int][]automaton.NodeID, error) {
	out := make(map[int][]automaton.NodeID)
	seen := make(map[automaton.NodeID]bool)
	mark := func(n *automaton.Node) error {
		if !inN[n.State.String()] {
			return fmt.Errorf("%w: affected node %d at %s outside neighborhood", ErrPatchInput, n.ID, n.State)
		}
		if !seen[n.ID] {
			seen[n.ID] = true
			out[n.Mode] = append(out[n.Mode], n.ID)
		}
		return nil
	}
	edgeInto := func(n *automaton.Node, match func(automaton.State) bool) bool {
		for _, t := range n.Trans {
			if match(s.MustGet(t).State) {
				return true
			}
		}
		return false
	}

	for _, c := range changes {
		switch {
		case c.Kind == Restrict && c.Controlled:
			for _, id := range s.FindState(c.From) {
				n := s.MustGet(id)
				if edgeInto(n, c.To.Equal) {
					if err := mark(n); err != nil {
						return nil, err
					}
				}
			}
		case c.Kind == Relax && !c.Controlled:
			for _, id := range s.FindState(c.From) {
				n := s.MustGet(id)
				answered := edgeInto(n, func(v automaton.State) bool { return v.Env(numEnv).Equal(c.To) })
				if !answered {
					if err := mark(n); err != nil {
						return nil, err
					}
				}
			}
		case c.Kind == BlockSys:
			for _, n := range s.Nodes() {
				if edgeInto(n, func(v automaton.State) bool { return v.Sys(numEnv).Equal(c.To) }) {
					if err := mark(n); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return out, nil
}

// dropEnvEdges removes the edges answering an environment move that a
// Restrict change takes away. The rest of each node's answers still stand.
func dropEnvEdges(s *automaton.Store, changes []Change, numEnv int) error {
	for _, c := range changes {
		if c.Kind != Restrict || c.Controlled {
			continue
		}
		for _, id := range s.FindState(c.From) {
			n := s.MustGet(id)
			keep := slices.DeleteFunc(slices.Clone(n.Trans), func(t automaton.NodeID) bool {
				return s.MustGet(t).State.Env(numEnv).Equal(c.To)
			})
			if len(keep) == len(n.Trans) {
				continue
			}
			if err := s.SetTrans(id, keep); err != nil {
				return err
			}
		}
	}
	return nil
}

// modePatcher re-solves one goal mode inside the neighborhood.
type modePatcher struct {
	ctx      context.Context
	store    *automaton.Store
	game     *solve.Game
	region   symbolic.Set
	inN      map[string]bool
	mode     int
	affected []automaton.NodeID
	log      *slog.Logger
}

func (p *modePatcher) in(n *automaton.Node) bool { return p.inN[n.State.String()] }

func (p *modePatcher) run() error {
	s, m := p.store, p.game.Manager()

	// Entries reached from a node of the same mode bound the exit ranks;
	// entries reached only across a mode change do not.
	var exits, entries []*automaton.Node
	entrySeen := make(map[string]bool)
	bounding := make(map[automaton.NodeID]bool)
	addEntry := func(n *automaton.Node, bound bool) {
		if bound {
			bounding[n.ID] = true
		}
		if k := n.State.String(); !entrySeen[k] {
			entrySeen[k] = true
			entries = append(entries, n)
		}
	}
	for _, n := range s.Nodes() {
		if n.Mode == p.mode && p.in(n) {
			exits = append(exits, n)
			if n.Initial {
				addEntry(n, true)
			}
			continue
		}
		for _, t := range n.Trans {
			if v := s.MustGet(t); v.Mode == p.mode && p.in(v) {
				addEntry(v, n.Mode == p.mode)
			}
		}
	}

	minRank := math.MaxInt
	for _, n := range entries {
		if bounding[n.ID] {
			minRank = min(minRank, n.Rank)
		}
	}
	for _, id := range p.affected {
		if n, ok := s.Get(id); ok {
			minRank = min(minRank, n.Rank)
		}
	}
	exits = slices.DeleteFunc(exits, func(n *automaton.Node) bool { return n.Rank >= minRank })

	entrySet, exitSet := m.False(), m.False()
	for _, n := range entries {
		entrySet = m.Or(entrySet, m.StateSet(n.State))
	}
	exitByState := make(map[string]*automaton.Node, len(exits))
	for _, n := range exits {
		exitSet = m.Or(exitSet, m.StateSet(n.State))
		exitByState[n.State.String()] = n
	}
	p.log.Debug("local game",
		slog.Int("mode", p.mode),
		slog.Int("entry", len(entries)),
		slog.Int("exit", len(exits)),
		slog.Int("min_rank", minRank))

	local, err := solve.ReachGame(p.game, entrySet, exitSet, p.region,
		solve.WithContext(p.ctx), solve.WithLogger(p.log))
	if errors.Is(err, solve.ErrNoLocalStrategy) {
		return fmt.Errorf("%w: mode %d: %w", ErrPatchInfeasible, p.mode, err)
	}
	if err != nil {
		return err
	}

	localMin, localMax := math.MaxInt, math.MinInt
	for _, n := range local.Nodes() {
		localMin = min(localMin, n.Rank)
		localMax = max(localMax, n.Rank)
	}

	remap, err := s.Absorb(local)
	if err != nil {
		return err
	}
	for _, e := range entries {
		lid, ok := local.Find(solve.ReachMode, e.State)
		if !ok {
			return fmt.Errorf("%w: entry %s missing from local strategy", solve.ErrInternalInconsistency, e.State)
		}
		nid := remap[lid]
		if e.Initial {
			s.MustGet(nid).Initial = true
		}
		if err := s.ReplaceTransitions(e.ID, nid); err != nil {
			return err
		}
	}

	exitRank := -1
	protected := make(map[automaton.NodeID]bool)
	sameModeInN := func(_, next *automaton.Node) bool { return next.Mode == p.mode && p.in(next) }
	for _, ln := range local.Nodes() {
		if len(ln.Trans) > 0 {
			continue
		}
		ex, ok := exitByState[ln.State.String()]
		if !ok {
			return fmt.Errorf("%w: local terminal %s is not an exit", solve.ErrInternalInconsistency, ln.State)
		}
		exitRank = max(exitRank, ex.Rank)
		kept, err := dfs.Reach(s, ex.ID, sameModeInN)
		if err != nil {
			return err
		}
		protected[ex.ID] = true
		for _, id := range kept {
			protected[id] = true
		}
		nid := remap[ln.ID]
		if err := s.ReplaceTransitions(nid, ex.ID); err != nil {
			return err
		}
		if err := s.Delete(nid); err != nil {
			return err
		}
	}

	var doomed []automaton.NodeID
	for _, n := range s.Nodes() {
		if n.Mode == p.mode && p.in(n) && !protected[n.ID] {
			doomed = append(doomed, n.ID)
		}
	}
	if err := s.DeleteSet(doomed); err != nil {
		return err
	}

	k := 1
	if exitRank >= 0 {
		for (minRank-exitRank)*k < localMax-localMin {
			k++
		}
	}
	for _, n := range s.Nodes() {
		if n.Mode != solve.ReachMode && n.Rank > 0 {
			n.Rank *= k
		}
	}
	shift := max(exitRank, 0) * k
	for _, nid := range remap {
		n, ok := s.Get(nid)
		if !ok {
			continue
		}
		n.Rank += shift
		if err := s.SetMode(nid, p.mode); err != nil {
			return err
		}
	}
	p.log.Debug("mode patched",
		slog.Int("mode", p.mode),
		slog.Int("local_nodes", local.Len()),
		slog.Int("deleted", len(doomed)),
		slog.Int("scale", k))
	return nil
}
