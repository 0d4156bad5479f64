// File: game.go
// Role: The two-player game (ET, ST, env goals) and its controllable
// predecessor, plus the X/Y fixpoint steps every solver loop shares.
package solve

import (
	"fmt"

	"github.com/katalvlaran/gr1synth/metrics"
	"github.com/katalvlaran/gr1synth/spec"
	"github.com/katalvlaran/gr1synth/symbolic"
)

// Game is the arena the solver reasons about: environment and system
// transition relations plus the environment goals. A Game shares its
// Manager with the spec it came from and is not safe for concurrent use.
type Game struct {
	m        *symbolic.Manager
	et, st   symbolic.Set
	envGoals []symbolic.Set
}

// NewGame builds a game from explicit relations. An empty envGoals list
// reads as a single constant-true goal.
func NewGame(m *symbolic.Manager, et, st symbolic.Set, envGoals []symbolic.Set) *Game {
	goals := append([]symbolic.Set(nil), envGoals...)
	if len(goals) == 0 {
		goals = []symbolic.Set{m.True()}
	}
	return &Game{m: m, et: et, st: st, envGoals: goals}
}

// GameOf returns the game of a specification.
func GameOf(s *spec.Spec) *Game {
	return NewGame(s.Manager(), s.EnvTrans(), s.SysTrans(), s.EnvGoals())
}

// Manager returns the symbolic manager of g.
func (g *Game) Manager() *symbolic.Manager { return g.m }

// EnvTrans returns ET.
func (g *Game) EnvTrans() symbolic.Set { return g.et }

// SysTrans returns ST.
func (g *Game) SysTrans() symbolic.Set { return g.st }

// EnvGoals returns the environment goals, never empty.
func (g *Game) EnvGoals() []symbolic.Set { return append([]symbolic.Set(nil), g.envGoals...) }

// CPre returns the states from which the system can force the next state
// into c whatever the environment does:
//
//	CPre(C) = ∀e'. (ET → ∃s'. (ST ∧ C'))
func (g *Game) CPre(c symbolic.Set) (symbolic.Set, error) {
	metrics.CPreTotal.Inc()
	m := g.m
	sys := m.AndExistsPrimedSys(g.st, m.Prime(c))
	out := m.ForallPrimedEnv(m.Imp(g.et, sys))
	if err := g.check("cpre"); err != nil {
		return symbolic.Set{}, err
	}
	return out, nil
}

// check converts a sticky manager failure into ErrAlgebraOpFailed.
func (g *Game) check(op string) error {
	if err := g.m.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrAlgebraOpFailed, op, err)
	}
	return nil
}

// xFixpoint computes the greatest fixpoint
//
//	X = νX. goalTerm ∨ yExmod ∨ ((CPre(X) ∧ n) ∧ ¬envGoal)
//
// starting from the universe.
func (g *Game) xFixpoint(goalTerm, yExmod, envGoal, n symbolic.Set) (symbolic.Set, error) {
	m := g.m
	notGoal := m.Not(envGoal)
	x := m.True()
	for {
		prev := x
		pre, err := g.CPre(prev)
		if err != nil {
			return symbolic.Set{}, err
		}
		x = m.Or(goalTerm, yExmod, m.And(pre, n, notGoal))
		x = m.And(x, prev)
		metrics.Iteration("x")
		if err := g.check("x fixpoint"); err != nil {
			return symbolic.Set{}, err
		}
		if m.Equal(x, prev) {
			return x, nil
		}
	}
}

// level computes one Y step from prev: the disjunction over env goals of
// the X fixpoints, joined with prev. It also returns the X sets.
func (g *Game) level(prev, goalTerm, n symbolic.Set) (symbolic.Set, []symbolic.Set, error) {
	m := g.m
	pre, err := g.CPre(prev)
	if err != nil {
		return symbolic.Set{}, nil, err
	}
	yExmod := m.And(pre, n)

	y := prev
	xs := make([]symbolic.Set, len(g.envGoals))
	for r, eg := range g.envGoals {
		x, err := g.xFixpoint(goalTerm, yExmod, eg, n)
		if err != nil {
			return symbolic.Set{}, nil, err
		}
		xs[r] = x
		y = m.Or(y, x)
	}
	if err := g.check("y step"); err != nil {
		return symbolic.Set{}, nil, err
	}
	return y, xs, nil
}
