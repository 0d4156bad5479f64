package spec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/katalvlaran/gr1synth/symbolic"
)

// Sentinel errors for specification construction and loading.
var (
	// ErrUndefinedInitMode is returned for an init mode name or value
	// outside the three supported interpretations.
	ErrUndefinedInitMode = errors.New("spec: undefined init mode")

	// ErrInvalidSpec indicates a structurally inconsistent specification
	// (missing manager, both or neither init sets under ONE_SIDE_INIT, ...).
	ErrInvalidSpec = errors.New("spec: invalid specification")

	// ErrFormula wraps syntax and typing errors in formula text.
	ErrFormula = errors.New("spec: bad formula")

	// ErrUnknownVariable indicates a formula names an undeclared variable.
	ErrUnknownVariable = errors.New("spec: unknown variable")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("spec: invalid option supplied")
)

// InitMode selects how the initial conditions are interpreted.
type InitMode int

const (
	// AllEnvExistSysInit: for every env state allowed by envInit there must
	// exist a sys state satisfying sysInit in the winning set.
	AllEnvExistSysInit InitMode = iota

	// AllInit: every state of envInit ∧ sysInit must be winning.
	AllInit

	// OneSideInit: exactly one of envInit/sysInit is declared.
	OneSideInit
)

var initModeNames = map[InitMode]string{
	AllEnvExistSysInit: "ALL_ENV_EXIST_SYS_INIT",
	AllInit:            "ALL_INIT",
	OneSideInit:        "ONE_SIDE_INIT",
}

// String returns the canonical upper-case name.
func (m InitMode) String() string {
	if s, ok := initModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("InitMode(%d)", int(m))
}

// Valid reports whether m is one of the defined modes.
func (m InitMode) Valid() bool {
	_, ok := initModeNames[m]
	return ok
}

// ParseInitMode maps a mode name (case-insensitive) to an InitMode.
// The empty string selects AllEnvExistSysInit.
func ParseInitMode(s string) (InitMode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return AllEnvExistSysInit, nil
	}
	for m, name := range initModeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUndefinedInitMode, s)
}

// Option configures a Spec at construction.
type Option func(*Options)

// Options collects the components of a Spec before it is frozen.
type Options struct {
	EnvInit         symbolic.Set
	SysInit         symbolic.Set
	EnvInitDeclared bool
	SysInitDeclared bool

	EnvTrans []symbolic.Set
	SysTrans []symbolic.Set
	EnvGoals []symbolic.Set
	SysGoals []symbolic.Set

	InitMode InitMode

	err error
}

// DefaultOptions returns an empty specification under AllEnvExistSysInit.
func DefaultOptions() Options {
	return Options{InitMode: AllEnvExistSysInit}
}

func checkSets(o *Options, what string, sets []symbolic.Set) bool {
	for i, s := range sets {
		if !s.Valid() {
			o.err = fmt.Errorf("%w: %s[%d] is not a valid set", ErrOptionViolation, what, i)
			return false
		}
	}
	return true
}

// WithEnvInit declares the environment initial condition.
func WithEnvInit(s symbolic.Set) Option {
	return func(o *Options) {
		if checkSets(o, "envInit", []symbolic.Set{s}) {
			o.EnvInit, o.EnvInitDeclared = s, true
		}
	}
}

// WithSysInit declares the system initial condition.
func WithSysInit(s symbolic.Set) Option {
	return func(o *Options) {
		if checkSets(o, "sysInit", []symbolic.Set{s}) {
			o.SysInit, o.SysInitDeclared = s, true
		}
	}
}

// WithEnvTrans appends conjunct parts of the environment transition relation.
func WithEnvTrans(parts ...symbolic.Set) Option {
	return func(o *Options) {
		if checkSets(o, "envTrans", parts) {
			o.EnvTrans = append(o.EnvTrans, parts...)
		}
	}
}

// WithSysTrans appends conjunct parts of the system transition relation.
func WithSysTrans(parts ...symbolic.Set) Option {
	return func(o *Options) {
		if checkSets(o, "sysTrans", parts) {
			o.SysTrans = append(o.SysTrans, parts...)
		}
	}
}

// WithEnvGoals appends environment liveness goals, in order.
func WithEnvGoals(goals ...symbolic.Set) Option {
	return func(o *Options) {
		if checkSets(o, "envGoals", goals) {
			o.EnvGoals = append(o.EnvGoals, goals...)
		}
	}
}

// WithSysGoals appends system liveness goals, in order.
func WithSysGoals(goals ...symbolic.Set) Option {
	return func(o *Options) {
		if checkSets(o, "sysGoals", goals) {
			o.SysGoals = append(o.SysGoals, goals...)
		}
	}
}

// WithInitMode selects the init interpretation.
func WithInitMode(m InitMode) Option {
	return func(o *Options) {
		if !m.Valid() {
			o.err = fmt.Errorf("%w: %v", ErrUndefinedInitMode, m)
			return
		}
		o.InitMode = m
	}
}
