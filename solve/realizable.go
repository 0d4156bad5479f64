package solve

import (
	"fmt"
	"log/slog"

	"github.com/katalvlaran/gr1synth/metrics"
	"github.com/katalvlaran/gr1synth/spec"
	"github.com/katalvlaran/gr1synth/symbolic"
)

// CheckRealizable decides realizability of s given its winning set w,
// according to the init mode of s.
//
// Errors:
//   - spec.ErrUndefinedInitMode for a mode outside the three defined ones.
//   - spec.ErrInvalidSpec under OneSideInit when both or neither init set
//     is declared.
//   - ErrAlgebraOpFailed on engine failure.
func CheckRealizable(s *spec.Spec, w symbolic.Set) (bool, error) {
	m := s.Manager()
	einit, sinit := s.EnvInit(), s.SysInit()

	var ok bool
	switch s.InitMode() {
	case spec.AllInit:
		both := m.And(einit, sinit)
		ok = !m.IsFalse(both) && m.Equal(both, m.And(both, w))
	case spec.AllEnvExistSysInit:
		both := m.And(sinit, einit)
		ok = m.Equal(m.ExistsSys(both), m.ExistsSys(m.And(both, w)))
	case spec.OneSideInit:
		switch {
		case s.EnvInitDeclared() && !s.SysInitDeclared():
			ok = m.Equal(m.And(einit, w), einit)
		case s.SysInitDeclared() && !s.EnvInitDeclared():
			ok = !m.IsFalse(m.And(sinit, w))
		default:
			return false, fmt.Errorf("%w: %s needs exactly one of env_init/sys_init", spec.ErrInvalidSpec, spec.OneSideInit)
		}
	default:
		return false, fmt.Errorf("%w: %d", spec.ErrUndefinedInitMode, int(s.InitMode()))
	}
	if err := m.Err(); err != nil {
		return false, fmt.Errorf("%w: realizability: %w", ErrAlgebraOpFailed, err)
	}
	return ok, nil
}

// Realizable computes the winning set of s and checks realizability.
// The winning set is returned whatever the verdict.
func Realizable(s *spec.Spec, opts ...Option) (bool, symbolic.Set, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return false, symbolic.Set{}, err
	}
	w, err := winningSet(GameOf(s), s.SysGoals(), o)
	if err != nil {
		return false, symbolic.Set{}, err
	}
	ok, err := CheckRealizable(s, w)
	if err != nil {
		return false, w, err
	}
	metrics.Verdict(ok)
	if !ok {
		o.log().Warn("specification is unrealizable", slog.String("init_mode", s.InitMode().String()))
	}
	return ok, w, nil
}
