package spec

import (
	"fmt"

	"github.com/katalvlaran/gr1synth/symbolic"
)

// Spec is an immutable GR(1) specification bound to one symbolic Manager.
// Copies made with the With* methods share the Manager.
type Spec struct {
	m *symbolic.Manager

	envInit, sysInit                 symbolic.Set
	envInitDeclared, sysInitDeclared bool

	envTransParts, sysTransParts []symbolic.Set
	envTrans, sysTrans           symbolic.Set

	envGoals, sysGoals []symbolic.Set

	initMode InitMode
}

// New freezes a specification over m.
//
// Undeclared init sets read as true; empty transition lists read as true.
// Goal lists are kept as given; see EnvGoals and SysGoals for the empty case.
func New(m *symbolic.Manager, opts ...Option) (*Spec, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil manager", ErrInvalidSpec)
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	s := &Spec{
		m:               m,
		envInit:         m.True(),
		sysInit:         m.True(),
		envInitDeclared: o.EnvInitDeclared,
		sysInitDeclared: o.SysInitDeclared,
		envTransParts:   append([]symbolic.Set(nil), o.EnvTrans...),
		sysTransParts:   append([]symbolic.Set(nil), o.SysTrans...),
		envGoals:        append([]symbolic.Set(nil), o.EnvGoals...),
		sysGoals:        append([]symbolic.Set(nil), o.SysGoals...),
		initMode:        o.InitMode,
	}
	if o.EnvInitDeclared {
		s.envInit = o.EnvInit
	}
	if o.SysInitDeclared {
		s.sysInit = o.SysInit
	}
	s.envTrans = m.And(s.envTransParts...)
	s.sysTrans = m.And(s.sysTransParts...)
	if err := m.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// Manager returns the symbolic manager the spec is expressed in.
func (s *Spec) Manager() *symbolic.Manager { return s.m }

// NumEnv returns the number of environment variables.
func (s *Spec) NumEnv() int { return s.m.NumEnv() }

// NumSys returns the number of system variables.
func (s *Spec) NumSys() int { return s.m.NumSys() }

// EnvInit returns the environment initial condition (true when undeclared).
func (s *Spec) EnvInit() symbolic.Set { return s.envInit }

// SysInit returns the system initial condition (true when undeclared).
func (s *Spec) SysInit() symbolic.Set { return s.sysInit }

// EnvInitDeclared reports whether an environment init set was given.
func (s *Spec) EnvInitDeclared() bool { return s.envInitDeclared }

// SysInitDeclared reports whether a system init set was given.
func (s *Spec) SysInitDeclared() bool { return s.sysInitDeclared }

// EnvTrans returns the conjunction of the environment transition parts.
func (s *Spec) EnvTrans() symbolic.Set { return s.envTrans }

// SysTrans returns the conjunction of the system transition parts.
func (s *Spec) SysTrans() symbolic.Set { return s.sysTrans }

// EnvTransParts returns a copy of the environment transition conjuncts.
func (s *Spec) EnvTransParts() []symbolic.Set {
	return append([]symbolic.Set(nil), s.envTransParts...)
}

// SysTransParts returns a copy of the system transition conjuncts.
func (s *Spec) SysTransParts() []symbolic.Set {
	return append([]symbolic.Set(nil), s.sysTransParts...)
}

// EnvGoals returns the environment goals. An empty list reads as a single
// constant-true goal.
func (s *Spec) EnvGoals() []symbolic.Set {
	if len(s.envGoals) == 0 {
		return []symbolic.Set{s.m.True()}
	}
	return append([]symbolic.Set(nil), s.envGoals...)
}

// SysGoals returns the system goals. An empty list reads as a single
// constant-true goal.
func (s *Spec) SysGoals() []symbolic.Set {
	if len(s.sysGoals) == 0 {
		return []symbolic.Set{s.m.True()}
	}
	return append([]symbolic.Set(nil), s.sysGoals...)
}

// DeclaredSysGoals returns the system goals exactly as given.
func (s *Spec) DeclaredSysGoals() []symbolic.Set {
	return append([]symbolic.Set(nil), s.sysGoals...)
}

// InitMode returns the init interpretation.
func (s *Spec) InitMode() InitMode { return s.initMode }

// WithSysGoalList returns a copy of s whose system goals are replaced.
func (s *Spec) WithSysGoalList(goals []symbolic.Set) *Spec {
	c := *s
	c.sysGoals = append([]symbolic.Set(nil), goals...)
	return &c
}

// WithSysGoalInserted returns a copy of s with goal inserted at position i.
func (s *Spec) WithSysGoalInserted(i int, goal symbolic.Set) (*Spec, error) {
	if i < 0 || i > len(s.sysGoals) {
		return nil, fmt.Errorf("%w: goal position %d out of [0,%d]", ErrInvalidSpec, i, len(s.sysGoals))
	}
	goals := make([]symbolic.Set, 0, len(s.sysGoals)+1)
	goals = append(goals, s.sysGoals[:i]...)
	goals = append(goals, goal)
	goals = append(goals, s.sysGoals[i:]...)
	return s.WithSysGoalList(goals), nil
}

// WithSysGoalRemoved returns a copy of s without goal i.
func (s *Spec) WithSysGoalRemoved(i int) (*Spec, error) {
	if i < 0 || i >= len(s.sysGoals) {
		return nil, fmt.Errorf("%w: goal position %d out of [0,%d)", ErrInvalidSpec, i, len(s.sysGoals))
	}
	goals := make([]symbolic.Set, 0, len(s.sysGoals)-1)
	goals = append(goals, s.sysGoals[:i]...)
	goals = append(goals, s.sysGoals[i+1:]...)
	return s.WithSysGoalList(goals), nil
}

// WithTrans returns a copy of s whose transition relations are replaced by
// single-part relations envTrans and sysTrans.
func (s *Spec) WithTrans(envTrans, sysTrans symbolic.Set) *Spec {
	c := *s
	c.envTransParts = []symbolic.Set{envTrans}
	c.sysTransParts = []symbolic.Set{sysTrans}
	c.envTrans, c.sysTrans = envTrans, sysTrans
	return &c
}
