// File: extract.go
// Role: Move enumeration and successor selection shared by the strategy
// extractor and the local reachability game.
package solve

import (
	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/symbolic"
)

// picker chooses successors under ST restricted to a region.
type picker struct {
	g    *Game
	m    *symbolic.Manager
	base symbolic.Set // ST ∧ region'
}

func newPicker(g *Game, region symbolic.Set) *picker {
	m := g.m
	return &picker{g: g, m: m, base: m.And(g.st, m.Prime(region))}
}

// envMoves lists the environment moves ET allows from state. With no
// environment variables there is one empty move when ET is satisfiable.
func (p *picker) envMoves(state []bool) ([][]bool, error) {
	m := p.m
	return m.Minterms(m.CofactorState(p.g.et, state), m.PrimedEnvLevels())
}

// pick returns the first successor of (state, move) inside target.
// Don't-care system bits are read as false.
func (p *picker) pick(target symbolic.Set, state, move []bool) (automaton.State, bool) {
	m := p.m
	c := m.And(p.base, m.Prime(target))
	c = m.CofactorState(c, state)
	c = m.CofactorPrimedEnv(c, move)
	sys, ok := m.FirstMinterm(c, m.PrimedSysLevels())
	if !ok {
		return nil, false
	}
	return automaton.Concat(move, sys), true
}

// successor moves one rank down the chain: first into ys[j-1], then into
// the retained X sets at j-1 and j. At rank 0 it aims at ys[0] and, when
// valid, at fallback.
func (p *picker) successor(ys []symbolic.Set, xs [][]symbolic.Set, j int, state, move []bool, fallback symbolic.Set) (automaton.State, bool) {
	target := ys[0]
	if j > 0 {
		target = ys[j-1]
	}
	if next, ok := p.pick(target, state, move); ok {
		return next, true
	}
	if j > 0 {
		for _, off := range []int{1, 0} {
			for _, x := range xs[j-off] {
				if next, ok := p.pick(x, state, move); ok {
					return next, true
				}
			}
		}
		return nil, false
	}
	if fallback.Valid() {
		return p.pick(fallback, state, move)
	}
	return nil, false
}
