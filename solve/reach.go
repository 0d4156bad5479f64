package solve

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/metrics"
	"github.com/katalvlaran/gr1synth/symbolic"
)

// ReachMode is the mode carried by every node ReachGame produces.
const ReachMode = -1

// ReachGame builds a strategy driving every Entry state into Exit while
// staying inside the region n, for the game g.
//
// The returned store holds one node per visited state, all in ReachMode
// and none initial. Node ranks count the sublevels still to cross; rank 0
// nodes lie in Exit and have no outgoing edges.
//
// Errors:
//   - ErrNoLocalStrategy if the sublevel chain stalls before covering Entry.
//   - ErrInternalInconsistency if a ranked state has no successor.
//   - ErrAlgebraOpFailed on engine failure, or ctx.Err() on cancellation.
func ReachGame(g *Game, entry, exit, n symbolic.Set, opts ...Option) (*automaton.Store, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(o.Ctx, "ReachGame", trace.WithAttributes(
		attribute.String("run_id", o.RunID),
	))
	defer span.End()
	start := time.Now()
	defer metrics.ObservePhase("reach", start)

	m := g.m
	empty := make([]symbolic.Set, len(g.envGoals))
	for r := range empty {
		empty[r] = m.False()
	}
	ys := []symbolic.Set{exit}
	xs := [][]symbolic.Set{empty}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		last := ys[len(ys)-1]
		y, x, err := g.level(last, exit, n)
		if err != nil {
			return nil, err
		}
		metrics.Iteration("reach")
		stalled := m.Equal(y, last)
		if m.Subset(entry, y) {
			if !stalled {
				ys = append(ys, y)
				xs = append(xs, x)
			}
			break
		}
		if stalled {
			span.AddEvent("stalled", trace.WithAttributes(attribute.Int("levels", len(ys))))
			return nil, ErrNoLocalStrategy
		}
		ys = append(ys, y)
		xs = append(xs, x)
	}
	o.log().Debug("reach game sublevels", slog.Int("levels", len(ys)))

	p := newPicker(g, n)
	store := automaton.NewStore(m.Width())
	starts, err := m.States(entry)
	if err != nil {
		return nil, fmt.Errorf("%w: entry states: %w", ErrAlgebraOpFailed, err)
	}
	stack := make([]automaton.State, 0, len(starts))
	for _, st := range starts {
		if _, err := store.Insert(ReachMode, -1, false, st); err != nil {
			return nil, err
		}
		stack = append(stack, st)
	}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		state := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id, ok := store.Find(ReachMode, state)
		if !ok {
			return nil, fmt.Errorf("%w: no reach node for %s", ErrInternalInconsistency, state)
		}
		node := store.MustGet(id)
		j := rankOf(m, ys, state)
		if j < 0 {
			return nil, fmt.Errorf("%w: state %s outside reach sublevels", ErrInternalInconsistency, state)
		}
		node.Rank = j
		if j == 0 || len(node.Trans) > 0 {
			continue
		}

		moves, err := p.envMoves(state)
		if err != nil {
			return nil, fmt.Errorf("%w: env moves: %w", ErrAlgebraOpFailed, err)
		}
		for _, move := range moves {
			next, ok := p.successor(ys, xs, j, state, move, symbolic.Set{})
			if !ok {
				return nil, fmt.Errorf("%w: no local successor from %s under move %s",
					ErrInternalInconsistency, state, automaton.State(move))
			}
			if _, found := store.Find(ReachMode, next); !found {
				if _, err := store.Insert(ReachMode, -1, false, next); err != nil {
					return nil, err
				}
				stack = append(stack, next)
			}
			if err := store.AppendTransition(ReachMode, state, ReachMode, next); err != nil {
				return nil, err
			}
		}
		if err := g.check("reach extraction"); err != nil {
			return nil, err
		}
	}
	o.log().Debug("reach game solved",
		slog.Int("nodes", store.Len()),
		slog.Duration("elapsed", time.Since(start)))
	return store, nil
}
