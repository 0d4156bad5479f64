// File: metric.go
// Role: Integer L1 distance between state sets.
//
// A metric is a list of variable-name prefixes. Each prefix selects the
// first variable whose name starts with it and every consecutive variable
// after it that also does; the selected bits read as an unsigned integer,
// least significant bit first. The distance of two states is the L1 norm
// of the difference of their integer vectors.
package hotswap

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/gr1synth/symbolic"
)

type group struct {
	prefix string
	start  int
	width  int
}

// Metric measures distances between states of one Manager.
type Metric struct {
	m      *symbolic.Manager
	groups []group
}

// NewMetric builds a metric from variable-name prefixes.
//
// Errors: ErrMetric when no prefix is given or one matches no variable.
func NewMetric(m *symbolic.Manager, prefixes ...string) (*Metric, error) {
	if len(prefixes) == 0 {
		return nil, fmt.Errorf("%w: no variable prefix", ErrMetric)
	}
	mt := &Metric{m: m}
	for _, p := range prefixes {
		start := -1
		for i := 0; i < m.Width(); i++ {
			if strings.HasPrefix(m.VarName(i), p) {
				start = i
				break
			}
		}
		if start < 0 || p == "" {
			return nil, fmt.Errorf("%w: prefix %q matches no variable", ErrMetric, p)
		}
		end := start + 1
		for end < m.Width() && strings.HasPrefix(m.VarName(end), p) {
			end++
		}
		mt.groups = append(mt.groups, group{prefix: p, start: start, width: end - start})
	}
	return mt, nil
}

// Values maps a state to its integer vector.
func (mt *Metric) Values(state []bool) []int {
	out := make([]int, len(mt.groups))
	for k, g := range mt.groups {
		for b := 0; b < g.width; b++ {
			if state[g.start+b] {
				out[k] |= 1 << b
			}
		}
	}
	return out
}

// Distance returns the L1 distance between two states.
func (mt *Metric) Distance(a, b []bool) int {
	va, vb := mt.Values(a), mt.Values(b)
	d := 0
	for k := range va {
		d += abs(va[k] - vb[k])
	}
	return d
}

// Bounds measures how far the states of t lie from the set g: for every
// state of t it takes the distance to the nearest state of g and returns
// the least and the greatest of those. ok is false when t or g is empty.
func (mt *Metric) Bounds(t, g symbolic.Set) (lo, hi int, ok bool, err error) {
	ts, err := mt.m.States(t)
	if err != nil {
		return 0, 0, false, err
	}
	gs, err := mt.m.States(g)
	if err != nil {
		return 0, 0, false, err
	}
	if len(ts) == 0 || len(gs) == 0 {
		return 0, 0, false, nil
	}
	lo, hi = -1, -1
	for _, a := range ts {
		nearest := -1
		for _, b := range gs {
			if d := mt.Distance(a, b); nearest < 0 || d < nearest {
				nearest = d
			}
		}
		if lo < 0 || nearest < lo {
			lo = nearest
		}
		if nearest > hi {
			hi = nearest
		}
	}
	return lo, hi, true, nil
}

func (mt *Metric) String() string {
	parts := make([]string, len(mt.groups))
	for k, g := range mt.groups {
		parts[k] = fmt.Sprintf("%s[%d:%d]", g.prefix, g.start, g.start+g.width)
	}
	return strings.Join(parts, " ")
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
