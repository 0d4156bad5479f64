// File: types.go
// Role: Sentinel errors, solver options, and the result and report types
// shared by every solver entry point.
package solve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/symbolic"
)

// Sentinel errors for the solver.
var (
	// ErrAlgebraOpFailed wraps a failure of the symbolic engine. It is fatal:
	// the manager is left in a failed state and must be discarded.
	ErrAlgebraOpFailed = errors.New("solve: symbolic operation failed")

	// ErrInternalInconsistency reports a violated solver invariant, such as
	// a winning state for which no successor can be found.
	ErrInternalInconsistency = errors.New("solve: internal inconsistency")

	// ErrNoLocalStrategy is returned by ReachGame when Entry cannot be
	// driven into Exit inside the neighborhood.
	ErrNoLocalStrategy = errors.New("solve: no local strategy")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("solve: invalid option supplied")
)

// Option configures solver calls.
type Option func(*Options)

// Options holds the knobs shared by every solver entry point.
type Options struct {
	// Ctx is checked between whole fixpoint sweeps and between work-list
	// pops. Defaults to context.Background().
	Ctx context.Context

	// Logger receives progress records. Defaults to slog.Default().
	Logger *slog.Logger

	// RunID tags log records and spans. Defaults to a fresh UUID.
	RunID string

	// Neighborhood, when valid, restricts sublevel construction to it.
	Neighborhood symbolic.Set

	err error
}

// DefaultOptions returns background context, the default logger and a new
// run id.
func DefaultOptions() Options {
	return Options{
		Ctx:    context.Background(),
		Logger: slog.Default(),
		RunID:  uuid.NewString(),
	}
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

// WithRunID tags the run. Empty ids are rejected.
func WithRunID(id string) Option {
	return func(o *Options) {
		if id == "" {
			o.err = fmt.Errorf("%w: empty run id", ErrOptionViolation)
			return
		}
		o.RunID = id
	}
}

// WithNeighborhood restricts sublevel construction to n.
func WithNeighborhood(n symbolic.Set) Option {
	return func(o *Options) { o.Neighborhood = n }
}

func buildOptions(opts []Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return o, o.err
	}
	return o, nil
}

func (o Options) log() *slog.Logger {
	return o.Logger.With(slog.String("run_id", o.RunID))
}

// Sublevels is the rank chain of every system goal.
//
// Y[i][j] is the j-th sublevel of goal i and X[i][j][r] the fixpoint for
// environment goal r retained at that level. In the raw chain Y[i][0] is
// empty; the shifted chain used for extraction starts at Goal_i ∧ W and
// keeps raw level 1 whenever it holds more than the goal.
type Sublevels struct {
	Y [][]symbolic.Set
	X [][][]symbolic.Set
}

// Len returns the number of sublevels of goal i.
func (s *Sublevels) Len(i int) int { return len(s.Y[i]) }

// Result is the outcome of Synthesize.
type Result struct {
	// Realizable reports the verdict of the active init mode.
	Realizable bool

	// Winning is the winning set W.
	Winning symbolic.Set

	// Strategy is the extracted automaton, nil when unrealizable.
	Strategy *automaton.Store
}

// ViolationKind classifies a failed strategy check.
type ViolationKind int

const (
	// UnsafeEdge: an edge violates ET ∧ ST.
	UnsafeEdge ViolationKind = iota

	// MissingEnvMove: an environment move allowed by ET has no edge.
	MissingEnvMove

	// RankIncrease: a same-mode edge fails to make progress.
	RankIncrease

	// DanglingEdge: an edge targets a missing node.
	DanglingEdge
)

func (k ViolationKind) String() string {
	switch k {
	case UnsafeEdge:
		return "unsafe-edge"
	case MissingEnvMove:
		return "missing-env-move"
	case RankIncrease:
		return "rank-increase"
	case DanglingEdge:
		return "dangling-edge"
	default:
		return fmt.Sprintf("ViolationKind(%d)", int(k))
	}
}

// Violation is one failed check.
type Violation struct {
	Kind   ViolationKind
	Node   automaton.NodeID
	Target automaton.NodeID
	Detail string

	// Path leads from an initial node to Node along strategy edges.
	Path []automaton.NodeID
}

func (v Violation) String() string {
	return fmt.Sprintf("%s at node %d -> %d: %s", v.Kind, v.Node, v.Target, v.Detail)
}

// Report lists the violations found by Verify.
type Report struct {
	Checked    int
	Violations []Violation
}

// OK reports whether no violation was found.
func (r *Report) OK() bool { return len(r.Violations) == 0 }
