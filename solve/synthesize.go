package solve

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/metrics"
	"github.com/katalvlaran/gr1synth/spec"
	"github.com/katalvlaran/gr1synth/symbolic"
)

// Synthesize solves s and, when it is realizable, extracts a winning
// strategy automaton.
//
// Nodes carry the goal mode they are pursuing and their sublevel rank.
// Initial nodes are seeded according to the init mode of s. An
// unrealizable s is not an error: the Result has Realizable false and a
// nil Strategy.
func Synthesize(s *spec.Spec, opts ...Option) (*Result, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(o.Ctx, "Synthesize", trace.WithAttributes(
		attribute.String("run_id", o.RunID),
		attribute.String("init_mode", s.InitMode().String()),
	))
	defer span.End()
	o.Ctx = ctx
	log := o.log()

	g := GameOf(s)
	goals := s.SysGoals()
	w, err := winningSet(g, goals, o)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	ok, err := CheckRealizable(s, w)
	if err != nil {
		return nil, err
	}
	metrics.Verdict(ok)
	span.SetAttributes(attribute.Bool("realizable", ok))
	if !ok {
		log.Warn("specification is unrealizable", slog.String("init_mode", s.InitMode().String()))
		return &Result{Winning: w}, nil
	}

	so := o
	so.Neighborhood = symbolic.Set{}
	raw, err := computeSublevels(g, goals, w, so)
	if err != nil {
		return nil, err
	}
	sub, err := raw.shifted(g.m, goals, w)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	store, err := extract(ctx, s, g, sub, w)
	metrics.ObservePhase("extract", start)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	metrics.StrategyNodes.Observe(float64(store.Len()))
	log.Info("strategy extracted",
		slog.Int("nodes", store.Len()),
		slog.Duration("elapsed", time.Since(start)))
	return &Result{Realizable: true, Winning: w, Strategy: store}, nil
}

// seeds returns the initial states of the strategy in insertion order.
func seeds(s *spec.Spec, w symbolic.Set) ([][]bool, error) {
	m := s.Manager()
	einit, sinit := s.EnvInit(), s.SysInit()

	switch s.InitMode() {
	case spec.AllInit:
		return m.States(m.And(einit, sinit))
	case spec.OneSideInit:
		if !s.SysInitDeclared() {
			return m.States(einit)
		}
		st, ok := m.FirstMinterm(m.And(sinit, w), m.StateLevels())
		if !ok {
			return nil, fmt.Errorf("%w: no winning initial state", ErrInternalInconsistency)
		}
		return [][]bool{st}, nil
	default:
		envs, err := m.Minterms(m.ExistsSys(einit), m.EnvLevels())
		if err != nil {
			return nil, err
		}
		good := m.And(w, einit, sinit)
		out := make([][]bool, 0, len(envs))
		for _, env := range envs {
			sys, ok := m.FirstMinterm(m.CofactorEnv(good, env), m.SysLevels())
			if !ok {
				return nil, fmt.Errorf("%w: env init %s has no winning sys init",
					ErrInternalInconsistency, automaton.State(env))
			}
			out = append(out, automaton.Concat(env, sys))
		}
		return out, nil
	}
}

type workItem struct {
	state automaton.State
	mode  int
}

// extract runs the work-list construction of the strategy over the
// shifted sublevel chain.
func extract(ctx context.Context, s *spec.Spec, g *Game, sub *Sublevels, w symbolic.Set) (*automaton.Store, error) {
	m := g.m
	n := len(sub.Y)
	p := newPicker(g, w)
	store := automaton.NewStore(m.Width())

	starts, err := seeds(s, w)
	if err != nil {
		return nil, err
	}
	stack := make([]workItem, 0, len(starts))
	for _, st := range starts {
		if _, ok := store.Find(0, st); ok {
			continue
		}
		if _, err := store.Insert(0, -1, true, st); err != nil {
			return nil, err
		}
		stack = append(stack, workItem{state: st, mode: 0})
	}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		state, loopMode := it.state, it.mode

		mode := loopMode
		var j int
		for {
			j = rankOf(m, sub.Y[mode], state)
			if j < 0 {
				return nil, fmt.Errorf("%w: state %s outside sublevels of goal %d",
					ErrInternalInconsistency, state, mode)
			}
			if j != 0 {
				break
			}
			mode = (mode + 1) % n
			if mode == loopMode {
				break
			}
		}

		id, ok := store.Find(loopMode, state)
		if !ok {
			return nil, fmt.Errorf("%w: no node for mode %d state %s", ErrInternalInconsistency, loopMode, state)
		}
		node := store.MustGet(id)
		if len(node.Trans) > 0 {
			continue
		}
		if mode != loopMode {
			id, err = rehome(store, node, mode)
			if err != nil {
				return nil, err
			}
			if id == automaton.None {
				continue
			}
			node = store.MustGet(id)
		}
		node.Rank = j

		moves, err := p.envMoves(state)
		if err != nil {
			return nil, fmt.Errorf("%w: env moves: %w", ErrAlgebraOpFailed, err)
		}
		for _, move := range moves {
			next, ok := p.successor(sub.Y[mode], sub.X[mode], j, state, move, m.True())
			if !ok {
				return nil, fmt.Errorf("%w: no successor from %s under move %s in mode %d",
					ErrInternalInconsistency, state, automaton.State(move), mode)
			}
			nextMode := mode
			if m.Contains(sub.Y[mode][0], next) {
				nextMode = (mode + 1) % n
			}
			if _, found := store.Find(nextMode, next); !found {
				if _, err := store.Insert(nextMode, -1, false, next); err != nil {
					return nil, err
				}
				stack = append(stack, workItem{state: next, mode: nextMode})
			}
			if err := store.AppendTransition(mode, state, nextMode, next); err != nil {
				return nil, err
			}
		}
		if err := m.Err(); err != nil {
			return nil, fmt.Errorf("%w: extraction: %w", ErrAlgebraOpFailed, err)
		}
	}
	return store, nil
}

// rehome moves an unexpanded placeholder node to mode. Edges into the
// placeholder are redirected and it is deleted. It returns the node to
// expand, or None when the node in the new mode is already expanded.
func rehome(store *automaton.Store, old *automaton.Node, mode int) (automaton.NodeID, error) {
	id, found := store.Find(mode, old.State)
	if !found {
		var err error
		id, err = store.Insert(mode, -1, old.Initial, old.State)
		if err != nil {
			return automaton.None, err
		}
	} else if old.Initial {
		store.MustGet(id).Initial = true
	}
	if err := store.ReplaceTransitions(old.ID, id); err != nil {
		return automaton.None, err
	}
	if err := store.Delete(old.ID); err != nil {
		return automaton.None, err
	}
	if len(store.MustGet(id).Trans) > 0 {
		return automaton.None, nil
	}
	return id, nil
}
