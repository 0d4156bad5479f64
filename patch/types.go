package patch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/spec"
)

// Sentinel errors for local patching.
var (
	// ErrPatchInfeasible reports that some goal mode admits no local
	// strategy inside the neighborhood. It wraps solve.ErrNoLocalStrategy.
	ErrPatchInfeasible = errors.New("patch: no local strategy in neighborhood")

	// ErrPatchInput reports a malformed change description, or a change
	// touching nodes outside the neighborhood.
	ErrPatchInput = errors.New("patch: bad change input")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("patch: invalid option supplied")
)

// Kind is the type of an edge change.
type Kind int

const (
	// Restrict removes an edge from the game.
	Restrict Kind = iota

	// Relax adds an edge to the game.
	Relax

	// BlockSys removes every system move into a system valuation.
	BlockSys
)

func (k Kind) String() string {
	switch k {
	case Restrict:
		return "restrict"
	case Relax:
		return "relax"
	case BlockSys:
		return "blocksys"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Change is one edit of the transition relations.
//
// For Restrict and Relax, From is a full state. To is a full state when
// Controlled (the edit applies to ST) or an environment part otherwise
// (the edit applies to ET). For BlockSys, From is nil and To is a system
// part.
type Change struct {
	Kind       Kind
	Controlled bool
	From       automaton.State
	To         automaton.State
}

func (c Change) String() string {
	if c.Kind == BlockSys {
		return fmt.Sprintf("blocksys %s", c.To)
	}
	return fmt.Sprintf("%s %s -> %s", c.Kind, c.From, c.To)
}

// Option configures Patch.
type Option func(*Options)

// Options holds the knobs of Patch.
type Options struct {
	// Ctx is passed down to every local game. Defaults to Background.
	Ctx context.Context

	// Logger receives progress records. Defaults to slog.Default().
	Logger *slog.Logger

	err error
}

// DefaultOptions returns background context and the default logger.
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

// Result is a patched strategy.
type Result struct {
	// Store is the patched automaton. The input store is never modified.
	Store *automaton.Store

	// Spec is the input spec with the edited transition relations.
	Spec *spec.Spec

	// Modes lists the goal modes that were re-solved, ascending.
	Modes []int
}
