// File: cube.go
// Role: Conversion between explicit assignments and Sets, cofactoring,
// cube and minterm enumeration, state counting.
//
// Determinism:
//   - Cubes are produced in the engine's low-branch-first order.
//   - Minterms expands don't-cares in counting order with the first
//     don't-care position as the most significant bit.
package symbolic

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/dalzilio/rudd"
)

// errStop aborts an Allsat walk early.
var errStop = errors.New("symbolic: stop enumeration")

func (m *Manager) failWidth(op string, want, got int) {
	if m.err == nil {
		m.err = fmt.Errorf("%w: %s: want %d values, got %d", ErrWidth, op, want, got)
	}
}

// Cube returns the conjunction of literals levels[k] = values[k].
func (m *Manager) Cube(levels []int, values []bool) Set {
	if len(levels) != len(values) {
		m.failWidth("cube", len(levels), len(values))
		return Set{}
	}
	if m.err != nil {
		return Set{}
	}
	acc := m.True()
	for k, lvl := range levels {
		if lvl < 0 || lvl >= 2*m.width {
			m.fail(fmt.Sprintf("cube level %d", lvl))
			return Set{}
		}
		lit := m.wrap("ithvar", m.bdd.Ithvar(lvl))
		if !values[k] {
			lit = m.Not(lit)
		}
		acc = m.And(acc, lit)
	}
	return acc
}

// StateSet returns the singleton set {state} over current-state variables.
func (m *Manager) StateSet(state []bool) Set {
	return m.Cube(m.levelsState, state)
}

// PrimedStateSet returns {state} over next-state variables.
func (m *Manager) PrimedStateSet(state []bool) Set {
	return m.Cube(m.levelsPrimed, state)
}

// Cofactor fixes levels[k] = values[k] in s and removes those variables.
func (m *Manager) Cofactor(s Set, levels []int, values []bool) Set {
	if len(levels) == 0 {
		return s
	}
	cube := m.Cube(levels, values)
	if !m.usable("cofactor", s, cube) {
		return Set{}
	}
	return m.wrap("cofactor", m.bdd.AppEx(s.n, cube.n, rudd.OPand, m.makeset(levels).n))
}

// CofactorState fixes every current-state variable to state.
func (m *Manager) CofactorState(s Set, state []bool) Set {
	return m.Cofactor(s, m.levelsState, state)
}

// CofactorEnv fixes the current-state environment variables.
func (m *Manager) CofactorEnv(s Set, env []bool) Set {
	return m.Cofactor(s, m.levelsEnv, env)
}

// CofactorPrimedEnv fixes the next-state environment variables.
func (m *Manager) CofactorPrimedEnv(s Set, env []bool) Set {
	return m.Cofactor(s, m.levelsPrimEnv, env)
}

// Contains reports whether state (current-state variables) lies in s.
// Variables s mentions beyond the current state are existentially read.
func (m *Manager) Contains(s Set, state []bool) bool {
	c := m.And(s, m.StateSet(state))
	return c.Valid() && !m.IsFalse(c)
}

// Cubes calls fn on each satisfying cube of s. The profile holds one entry
// per level: 0, 1, or -1 for don't-care. It is a fresh copy on each call.
// Returning false from fn stops the walk.
func (m *Manager) Cubes(s Set, fn func(profile []int) bool) error {
	if !m.usable("allsat", s) {
		return m.err
	}
	stopped := false
	err := m.bdd.Allsat(func(prof []int) error {
		if stopped {
			return errStop
		}
		if !fn(append([]int(nil), prof...)) {
			stopped = true
			return errStop
		}
		return nil
	}, s.n)
	if err != nil && !errors.Is(err, errStop) {
		m.fail("allsat")
		return m.err
	}
	return nil
}

// FirstCube returns the first cube of s, or false if s is empty.
func (m *Manager) FirstCube(s Set) ([]int, bool) {
	var out []int
	_ = m.Cubes(s, func(p []int) bool {
		out = p
		return false
	})
	return out, out != nil
}

// FirstMinterm projects the first cube of s onto levels, reading
// don't-cares as false.
func (m *Manager) FirstMinterm(s Set, levels []int) ([]bool, bool) {
	cube, ok := m.FirstCube(s)
	if !ok {
		return nil, false
	}
	out := make([]bool, len(levels))
	for k, lvl := range levels {
		out[k] = cube[lvl] == 1
	}
	return out, true
}

// Minterms returns every distinct assignment to levels that extends to a
// satisfying assignment of s. Each cube is projected onto levels and its
// don't-cares expanded; duplicates across cubes are dropped.
func (m *Manager) Minterms(s Set, levels []int) ([][]bool, error) {
	var (
		out  [][]bool
		seen = make(map[string]struct{})
	)
	err := m.Cubes(s, func(p []int) bool {
		var free []int
		base := make([]bool, len(levels))
		for k, lvl := range levels {
			switch p[lvl] {
			case 1:
				base[k] = true
			case -1:
				free = append(free, k)
			}
		}
		total := 1 << len(free)
		for c := 0; c < total; c++ {
			v := append([]bool(nil), base...)
			for b, k := range free {
				// first don't-care is the most significant bit
				v[k] = c&(1<<(len(free)-1-b)) != 0
			}
			key := bitsKey(v)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, v)
		}
		return true
	})
	return out, err
}

// States returns the explicit current states in s.
func (m *Manager) States(s Set) ([][]bool, error) {
	return m.Minterms(s, m.levelsState)
}

// CountStates returns the number of current states in s, ignoring any
// next-state variables it mentions.
func (m *Manager) CountStates(s Set) (*big.Int, error) {
	proj := m.ExistsPrimed(s)
	if !m.usable("satcount", proj) {
		return nil, m.err
	}
	n := m.bdd.Satcount(proj.n)
	if msg := m.bdd.Error(); msg != "" {
		m.fail("satcount")
		return nil, m.err
	}
	return new(big.Int).Rsh(n, uint(m.width)), nil
}

func bitsKey(v []bool) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, x := range v {
		if x {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
