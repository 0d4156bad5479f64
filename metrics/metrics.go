// Package metrics holds the Prometheus collectors shared by the solver,
// the local patcher and the goal hot-swapper.
//
// Collectors are registered on the default registry at package init, so a
// process only needs to expose promhttp.Handler() to publish them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gr1synth"

// =============================================================================
// Solver
// =============================================================================

var (
	// CPreTotal counts controllable-predecessor evaluations.
	CPreTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "solver",
		Name:      "cpre_total",
		Help:      "Total controllable-predecessor evaluations",
	})

	// FixpointIterations counts fixpoint iterations.
	// Labels: loop (z, y, x, sublevel, reach)
	FixpointIterations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "solver",
		Name:      "fixpoint_iterations_total",
		Help:      "Total fixpoint iterations by loop",
	}, []string{"loop"})

	// PhaseDuration measures solver phases.
	// Labels: phase (winning, sublevels, extract, reach, verify)
	PhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "solver",
		Name:      "phase_duration_seconds",
		Help:      "Duration of solver phases in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
	}, []string{"phase"})

	// Realizability counts realizability verdicts.
	// Labels: result (realizable, unrealizable)
	Realizability = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "solver",
		Name:      "realizability_total",
		Help:      "Total realizability checks by verdict",
	}, []string{"result"})

	// StrategyNodes records the size of extracted strategies.
	StrategyNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "solver",
		Name:      "strategy_nodes",
		Help:      "Number of nodes in extracted strategies",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	})
)

// =============================================================================
// Incremental resynthesis
// =============================================================================

var (
	// PatchTotal counts local patch attempts.
	// Labels: result (ok, infeasible, input_error, error)
	PatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "patch",
		Name:      "attempts_total",
		Help:      "Total local patch attempts by result",
	}, []string{"result"})

	// HotswapTotal counts goal insertions and removals.
	// Labels: op (add, remove), result (ok, unsupported, infeasible, error)
	HotswapTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "hotswap",
		Name:      "operations_total",
		Help:      "Total goal hot-swap operations by kind and result",
	}, []string{"op", "result"})
)

// ObservePhase records the time elapsed since start under phase.
func ObservePhase(phase string, start time.Time) {
	PhaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}

// Iteration bumps the iteration counter of one fixpoint loop.
func Iteration(loop string) {
	FixpointIterations.WithLabelValues(loop).Inc()
}

// Verdict records a realizability verdict.
func Verdict(realizable bool) {
	if realizable {
		Realizability.WithLabelValues("realizable").Inc()
		return
	}
	Realizability.WithLabelValues("unrealizable").Inc()
}
