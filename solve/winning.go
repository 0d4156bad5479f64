package solve

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/gr1synth/metrics"
	"github.com/katalvlaran/gr1synth/spec"
	"github.com/katalvlaran/gr1synth/symbolic"
)

var tracer = otel.Tracer("gr1synth.solve")

// WinningSet computes the set W of states from which the system can
// satisfy the GR(1) objective of s.
//
// Cancellation is checked between whole Z sweeps; a cancelled solve
// returns ctx.Err() and no set.
func WinningSet(s *spec.Spec, opts ...Option) (symbolic.Set, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return symbolic.Set{}, err
	}
	return winningSet(GameOf(s), s.SysGoals(), o)
}

func winningSet(g *Game, sysGoals []symbolic.Set, o Options) (symbolic.Set, error) {
	ctx, span := tracer.Start(o.Ctx, "WinningSet", trace.WithAttributes(
		attribute.String("run_id", o.RunID),
		attribute.Int("sys_goals", len(sysGoals)),
		attribute.Int("env_goals", len(g.envGoals)),
	))
	defer span.End()
	start := time.Now()
	defer metrics.ObservePhase("winning", start)

	m := g.m
	log := o.log()
	n := len(sysGoals)
	z := make([]symbolic.Set, n)
	for i := range z {
		z[i] = m.True()
	}

	for sweep := 1; ; sweep++ {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return symbolic.Set{}, err
		}
		prev := append([]symbolic.Set(nil), z...)
		for i := range sysGoals {
			reach, err := g.CPre(prev[(i+1)%n])
			if err != nil {
				return symbolic.Set{}, err
			}
			goalTerm := m.And(sysGoals[i], reach)

			y := m.False()
			for {
				next, _, err := g.level(y, goalTerm, m.True())
				if err != nil {
					return symbolic.Set{}, err
				}
				metrics.Iteration("y")
				if m.Equal(next, y) {
					break
				}
				y = next
			}
			z[i] = m.And(y, prev[i])
		}
		metrics.Iteration("z")
		if err := g.check("z sweep"); err != nil {
			return symbolic.Set{}, err
		}

		changed := false
		for i := range z {
			if !m.Equal(z[i], prev[i]) {
				changed = true
				break
			}
		}
		log.Debug("winning set sweep", slog.Int("sweep", sweep), slog.Bool("changed", changed))
		if !changed {
			span.AddEvent("converged", trace.WithAttributes(attribute.Int("sweeps", sweep)))
			break
		}
	}

	w := m.Or(z...)
	if err := g.check("winning set"); err != nil {
		return symbolic.Set{}, err
	}
	log.Info("winning set computed", slog.Duration("elapsed", time.Since(start)))
	return w, nil
}
