package solve

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/gr1synth/metrics"
	"github.com/katalvlaran/gr1synth/spec"
	"github.com/katalvlaran/gr1synth/symbolic"
)

// ComputeSublevels builds the raw rank chain of every system goal of s
// inside the winning set w. Y[i][0] is empty and the chain of goal i stops
// at the first level equal to its predecessor.
//
// WithNeighborhood restricts every level to a region; by default it is
// the universe. Cancellation is checked between levels.
func ComputeSublevels(s *spec.Spec, w symbolic.Set, opts ...Option) (*Sublevels, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return computeSublevels(GameOf(s), s.SysGoals(), w, o)
}

func computeSublevels(g *Game, sysGoals []symbolic.Set, w symbolic.Set, o Options) (*Sublevels, error) {
	ctx, span := tracer.Start(o.Ctx, "Sublevels", trace.WithAttributes(
		attribute.String("run_id", o.RunID),
	))
	defer span.End()
	start := time.Now()
	defer metrics.ObservePhase("sublevels", start)

	m := g.m
	n := m.True()
	if o.Neighborhood.Valid() {
		n = o.Neighborhood
	}

	sub := &Sublevels{
		Y: make([][]symbolic.Set, len(sysGoals)),
		X: make([][][]symbolic.Set, len(sysGoals)),
	}
	for i, goal := range sysGoals {
		goalTerm := m.And(goal, w)
		empty := make([]symbolic.Set, len(g.envGoals))
		for r := range empty {
			empty[r] = m.False()
		}
		ys := []symbolic.Set{m.False()}
		xs := [][]symbolic.Set{empty}
		for {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			last := ys[len(ys)-1]
			y, x, err := g.level(last, goalTerm, n)
			if err != nil {
				return nil, err
			}
			metrics.Iteration("sublevel")
			if m.Equal(y, last) {
				break
			}
			ys = append(ys, y)
			xs = append(xs, x)
		}
		sub.Y[i], sub.X[i] = ys, xs
		o.log().Debug("sublevels built", slog.Int("goal", i), slog.Int("levels", len(ys)))
	}
	return sub, nil
}

// shifted returns the chain used for extraction. Level 0 becomes
// Goal_i ∧ W exactly. The empty raw level 0 is dropped when raw level 1
// adds nothing to the goal; otherwise raw level 1 is kept so that states
// winning by blocking an environment goal, and states with no environment
// move, still carry a rank. X stays aligned with Y.
func (s *Sublevels) shifted(m *symbolic.Manager, sysGoals []symbolic.Set, w symbolic.Set) (*Sublevels, error) {
	out := &Sublevels{
		Y: make([][]symbolic.Set, len(s.Y)),
		X: make([][][]symbolic.Set, len(s.X)),
	}
	for i := range s.Y {
		if len(s.Y[i]) < 2 {
			return nil, fmt.Errorf("%w: goal %d has no reachable sublevel", ErrInternalInconsistency, i)
		}
		goal := m.And(sysGoals[i], w)
		from := 0
		if m.Equal(s.Y[i][1], goal) {
			from = 1
		}
		ys := append([]symbolic.Set(nil), s.Y[i][from:]...)
		ys[0] = goal
		out.Y[i] = ys
		out.X[i] = append([][]symbolic.Set(nil), s.X[i][from:]...)
	}
	return out, nil
}

// rankOf returns the least index j with state ∈ levels[j], or -1.
func rankOf(m *symbolic.Manager, levels []symbolic.Set, state []bool) int {
	for j, y := range levels {
		if m.Contains(y, state) {
			return j
		}
	}
	return -1
}
