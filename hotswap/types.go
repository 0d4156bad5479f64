package hotswap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/spec"
)

// Sentinel errors for goal hot-swapping.
var (
	// ErrUnsupported reports a goal change this package refuses to attempt:
	// a goal index out of range, too few goals, or initial nodes in a mode
	// the change would delete.
	ErrUnsupported = errors.New("hotswap: unsupported goal change")

	// ErrGoalModeAbsent reports that no strategy node carries the goal
	// modes the change works on.
	ErrGoalModeAbsent = errors.New("hotswap: goal mode absent from strategy")

	// ErrSwapInfeasible reports that a local reachability game has no
	// solution. It wraps solve.ErrNoLocalStrategy.
	ErrSwapInfeasible = errors.New("hotswap: no local strategy")

	// ErrMetric reports a metric prefix that matches no variable.
	ErrMetric = errors.New("hotswap: bad metric")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("hotswap: invalid option supplied")
)

// Option configures AddSysGoal and RemoveSysGoal.
type Option func(*Options)

// Options holds the knobs of the hot-swapper.
type Options struct {
	// Ctx is passed down to the local games. Defaults to Background.
	Ctx context.Context

	// Logger receives progress records. Defaults to slog.Default().
	Logger *slog.Logger

	// Metric picks the goal after which a new goal is inserted. With no
	// metric the new goal goes last.
	Metric *Metric

	err error
}

// DefaultOptions returns background context, the default logger and no
// metric.
func DefaultOptions() Options {
	return Options{Ctx: context.Background(), Logger: slog.Default()}
}

// WithContext sets the cancellation context. A nil ctx is rejected.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx == nil {
			o.err = fmt.Errorf("%w: nil context", ErrOptionViolation)
			return
		}
		o.Ctx = ctx
	}
}

// WithLogger sets the structured logger. A nil logger keeps the default.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithMetric sets the insertion metric.
func WithMetric(mt *Metric) Option {
	return func(o *Options) { o.Metric = mt }
}

func buildOptions(opts []Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o, o.err
}

// Result is a strategy after a goal change.
type Result struct {
	// Store is the new automaton. The input store is never modified.
	Store *automaton.Store

	// Spec is the input spec with the goal list changed.
	Spec *spec.Spec

	// Index is the position of the inserted goal, or of the removed one.
	Index int
}
