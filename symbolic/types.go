package symbolic

import (
	"errors"
	"fmt"

	"github.com/dalzilio/rudd"
)

// Sentinel errors for the symbolic layer.
var (
	// ErrOperation is recorded when the underlying BDD engine fails
	// (node table exhausted, illegal node, bad replacement, ...).
	ErrOperation = errors.New("symbolic: BDD operation failed")

	// ErrNoVariables is returned when a Manager is requested with no
	// environment and no system variables.
	ErrNoVariables = errors.New("symbolic: no state variables")

	// ErrDuplicateVariable indicates two variables share a name.
	ErrDuplicateVariable = errors.New("symbolic: duplicate variable name")

	// ErrEmptyVariable indicates an empty variable name.
	ErrEmptyVariable = errors.New("symbolic: empty variable name")

	// ErrWidth indicates a state or assignment of the wrong length.
	ErrWidth = errors.New("symbolic: assignment width mismatch")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("symbolic: invalid option supplied")
)

// Set is a handle to a boolean function owned by a Manager.
// The zero Set is invalid; it is what failed operations return.
type Set struct {
	n rudd.Node
}

// Valid reports whether s refers to a live function.
func (s Set) Valid() bool { return s.n != nil }

// Option configures a Manager at construction.
type Option func(*Options)

// Options holds the BDD table sizing knobs.
type Options struct {
	// NodeSize is the initial node table size (0 = library default).
	NodeSize int

	// CacheSize is the operation cache size (0 = library default).
	CacheSize int

	err error
}

// DefaultOptions returns library defaults for every knob.
func DefaultOptions() Options {
	return Options{}
}

// WithNodeSize sets the initial node table size. Negative values are rejected.
func WithNodeSize(n int) Option {
	return func(o *Options) {
		if n < 0 {
			o.err = fmt.Errorf("%w: NodeSize cannot be negative (%d)", ErrOptionViolation, n)
			return
		}
		o.NodeSize = n
	}
}

// WithCacheSize sets the operation cache size. Negative values are rejected.
func WithCacheSize(n int) Option {
	return func(o *Options) {
		if n < 0 {
			o.err = fmt.Errorf("%w: CacheSize cannot be negative (%d)", ErrOptionViolation, n)
			return
		}
		o.CacheSize = n
	}
}
