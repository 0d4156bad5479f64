package hotswap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/metrics"
	"github.com/katalvlaran/gr1synth/solve"
	"github.com/katalvlaran/gr1synth/symbolic"
)

var tracer = otel.Tracer("gr1synth.hotswap")

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnsupported), errors.Is(err, ErrGoalModeAbsent):
		return "unsupported"
	case errors.Is(err, ErrSwapInfeasible):
		return "infeasible"
	default:
		return "error"
	}
}

func record(op string, span trace.Span, err error) {
	metrics.HotswapTotal.WithLabelValues(op, outcome(err)).Inc()
	if err != nil {
		span.RecordError(err)
	}
}

func stateSet(m *symbolic.Manager, nodes []*automaton.Node) symbolic.Set {
	out := m.False()
	for _, n := range nodes {
		out = m.Or(out, m.StateSet(n.State))
	}
	return out
}

// firstByState indexes nodes by state, keeping the first node of each.
func firstByState(nodes []*automaton.Node) map[string]*automaton.Node {
	out := make(map[string]*automaton.Node, len(nodes))
	for _, n := range nodes {
		if _, dup := out[n.State.String()]; !dup {
			out[n.State.String()] = n
		}
	}
	return out
}

// localGame runs an unrestricted reachability game and maps a stalled
// chain to ErrSwapInfeasible.
func localGame(ctx context.Context, g *solve.Game, entry, exit symbolic.Set, log *slog.Logger, what string) (*automaton.Store, error) {
	local, err := solve.ReachGame(g, entry, exit, g.Manager().True(),
		solve.WithContext(ctx), solve.WithLogger(log))
	if errors.Is(err, solve.ErrNoLocalStrategy) {
		return nil, fmt.Errorf("%w: %s: %w", ErrSwapInfeasible, what, err)
	}
	return local, err
}
