package solve

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/bfs"
	"github.com/katalvlaran/gr1synth/metrics"
	"github.com/katalvlaran/gr1synth/spec"
)

// Verify checks a strategy automaton against s, for every node reachable
// from the initial nodes:
//
//   - every edge satisfies ET ∧ ST;
//   - every environment move ET allows is answered by some edge;
//   - a same-mode edge out of a node of positive rank lowers the rank, or
//     keeps it no higher from a state that falsifies some environment goal;
//   - no edge targets a missing node.
//
// Nodes with rank -1 are exempt from the rank check. Violations are
// collected in the Report, each with the path that reaches it from an
// initial node; the error is reserved for engine failures and
// cancellation.
func Verify(s *spec.Spec, store *automaton.Store, opts ...Option) (*Report, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(o.Ctx, "Verify", trace.WithAttributes(
		attribute.String("run_id", o.RunID),
	))
	defer span.End()
	start := time.Now()
	defer metrics.ObservePhase("verify", start)

	m := s.Manager()
	g := GameOf(s)
	p := newPicker(g, m.True())
	safe := m.And(s.EnvTrans(), s.SysTrans())
	envGoals := s.EnvGoals()
	numEnv := s.NumEnv()

	rep := &Report{}
	add := func(kind ViolationKind, from, to automaton.NodeID, format string, args ...any) {
		rep.Violations = append(rep.Violations, Violation{
			Kind: kind, Node: from, Target: to, Detail: fmt.Sprintf(format, args...),
		})
	}

	check := func(u *automaton.Node, _ int) error {
		rep.Checked++
		allowed := m.CofactorState(safe, u.State)

		lazy := false
		for _, eg := range envGoals {
			if !m.Contains(eg, u.State) {
				lazy = true
				break
			}
		}

		for _, t := range u.Trans {
			v, ok := store.Get(t)
			if !ok {
				add(DanglingEdge, u.ID, t, "edge target is not a live node")
				continue
			}
			step := m.And(allowed, m.PrimedStateSet(v.State))
			if m.IsFalse(step) {
				add(UnsafeEdge, u.ID, v.ID, "%s -> %s violates ET ∧ ST", u.State, v.State)
			}
			if v.Mode != u.Mode || u.Rank <= 0 || v.Rank < 0 {
				continue
			}
			if v.Rank < u.Rank || (lazy && v.Rank <= u.Rank) {
				continue
			}
			add(RankIncrease, u.ID, v.ID, "rank %d -> %d in mode %d", u.Rank, v.Rank, u.Mode)
		}

		moves, err := p.envMoves(u.State)
		if err != nil {
			return fmt.Errorf("%w: env moves: %w", ErrAlgebraOpFailed, err)
		}
		for _, move := range moves {
			answered := false
			for _, t := range u.Trans {
				if v, ok := store.Get(t); ok && v.State.Env(numEnv).Equal(move) {
					answered = true
					break
				}
			}
			if !answered {
				add(MissingEnvMove, u.ID, automaton.None, "env move %s unanswered", automaton.State(move))
			}
		}
		return nil
	}

	res, err := bfs.BFS(store, store.Initial(), bfs.WithContext(ctx), bfs.WithOnVisit(check))
	if err != nil {
		return nil, err
	}
	for i := range rep.Violations {
		if path, err := res.PathTo(rep.Violations[i].Node); err == nil {
			rep.Violations[i].Path = path
		}
	}
	if err := m.Err(); err != nil {
		return nil, fmt.Errorf("%w: verify: %w", ErrAlgebraOpFailed, err)
	}

	log := o.log()
	if rep.OK() {
		log.Info("strategy verified", slog.Int("checked", rep.Checked))
	} else {
		log.Warn("strategy has violations",
			slog.Int("checked", rep.Checked),
			slog.Int("violations", len(rep.Violations)))
	}
	return rep, nil
}
