package hotswap_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/hotswap"
	"github.com/katalvlaran/gr1synth/solve"
	"github.com/katalvlaran/gr1synth/spec"
	"github.com/katalvlaran/gr1synth/symbolic"
)

// grayTwoGoals moves one bit per step between 00 and 11.
const grayTwoGoals = `
sys: [x0, x1]
sys_init: "!x0 && !x1"
sys_trans: ["x0' == x0 || x1' == x1"]
sys_goals: ["!x0 && !x1", "x0 && x1"]
`

const oneGoal = `
sys: [x0, x1]
sys_goals: ["x0"]
`

func load(t *testing.T, src string) *spec.Spec {
	t.Helper()
	s, _, err := spec.Load(strings.NewReader(src))
	require.NoError(t, err)
	return s
}

func synth(t *testing.T, s *spec.Spec) *automaton.Store {
	t.Helper()
	res, err := solve.Synthesize(s)
	require.NoError(t, err)
	require.True(t, res.Realizable)
	return res.Strategy
}

func compile(t *testing.T, s *spec.Spec, src string) symbolic.Set {
	t.Helper()
	g, err := spec.Compile(s.Manager(), src, spec.ScopeState)
	require.NoError(t, err)
	return g
}

func dump(t *testing.T, s *automaton.Store) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, automaton.WriteGR1C(&b, s, automaton.GR1CVersion1))
	return b.String()
}

// walk follows the first edge from the single initial node for steps
// hops and returns the visited nodes.
func walk(t *testing.T, s *automaton.Store, steps int) []*automaton.Node {
	t.Helper()
	initial := s.Initial()
	require.Len(t, initial, 1)
	cur := s.MustGet(initial[0])
	out := []*automaton.Node{cur}
	for range steps {
		require.NotEmpty(t, cur.Trans, "node %d is a dead end", cur.ID)
		cur = s.MustGet(cur.Trans[0])
		out = append(out, cur)
	}
	return out
}

func assertValid(t *testing.T, s *spec.Spec, store *automaton.Store) {
	t.Helper()
	rep, err := solve.Verify(s, store)
	require.NoError(t, err)
	assert.True(t, rep.OK(), "%v", rep.Violations)
	assert.Equal(t, store.Len(), rep.Checked)
}

func TestMetric(t *testing.T) {
	s := load(t, grayTwoGoals)
	m := s.Manager()

	mt, err := hotswap.NewMetric(m, "x")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, mt.Values([]bool{true, false}))
	assert.Equal(t, []int{3}, mt.Values([]bool{true, true}))
	assert.Equal(t, 2, mt.Distance([]bool{true, false}, []bool{true, true}))

	lo, hi, ok, err := mt.Bounds(m.True(), m.StateSet([]bool{false, false}))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 3, hi)

	_, _, ok, err = mt.Bounds(m.False(), m.True())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = hotswap.NewMetric(m, "y")
	assert.ErrorIs(t, err, hotswap.ErrMetric)
	_, err = hotswap.NewMetric(m)
	assert.ErrorIs(t, err, hotswap.ErrMetric)
}

func TestAddSysGoal_NearestGoal(t *testing.T) {
	s := load(t, grayTwoGoals)
	store := synth(t, s)
	before := dump(t, store)

	mt, err := hotswap.NewMetric(s.Manager(), "x")
	require.NoError(t, err)
	goal := compile(t, s, "x0 && !x1")

	res, err := hotswap.AddSysGoal(s, store, goal, hotswap.WithMetric(mt))
	require.NoError(t, err)
	assert.Equal(t, before, dump(t, store))
	assert.Equal(t, 1, res.Index, "x=1 lies nearest to goal 0 (x=0)")
	require.Len(t, res.Spec.DeclaredSysGoals(), 3)
	m := s.Manager()
	assert.True(t, m.Equal(goal, res.Spec.DeclaredSysGoals()[1]))

	// 00 secures goal 0, heads for the new goal 10, then for 11, then home.
	path := walk(t, res.Store, 4)
	assert.Equal(t, automaton.State{false, false}, path[0].State)
	assert.Equal(t, 1, path[0].Mode)
	assert.Equal(t, automaton.State{true, false}, path[1].State)
	assert.Equal(t, 2, path[1].Mode)
	assert.Equal(t, automaton.State{true, true}, path[2].State)
	assert.Equal(t, 0, path[2].Mode)
	assert.Equal(t, 0, path[3].Mode)
	assert.Equal(t, path[0].ID, path[4].ID)

	for _, n := range res.Store.Nodes() {
		assert.Contains(t, []int{0, 1, 2}, n.Mode)
	}
	assertValid(t, res.Spec, res.Store)
}

func TestAddSysGoal_NoMetricAppends(t *testing.T) {
	s := load(t, grayTwoGoals)
	store := synth(t, s)
	goal := compile(t, s, "x0 && !x1")

	res, err := hotswap.AddSysGoal(s, store, goal)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Index)

	path := walk(t, res.Store, 4)
	assert.Equal(t, automaton.State{false, false}, path[0].State)
	assert.Equal(t, 1, path[0].Mode)
	assert.Equal(t, 1, path[1].Mode)
	assert.Equal(t, automaton.State{true, true}, path[2].State)
	assert.Equal(t, 2, path[2].Mode)
	assert.Equal(t, automaton.State{true, false}, path[3].State)
	assert.Equal(t, 0, path[3].Mode)
	assert.Equal(t, path[0].ID, path[4].ID)

	assertValid(t, res.Spec, res.Store)
}

func TestAddSysGoal_Unsupported(t *testing.T) {
	s := load(t, oneGoal)
	store := synth(t, s)
	_, err := hotswap.AddSysGoal(s, store, compile(t, s, "x1"))
	assert.ErrorIs(t, err, hotswap.ErrUnsupported)

	s2 := load(t, grayTwoGoals)
	_, err = hotswap.AddSysGoal(s2, automaton.NewStore(5), compile(t, s2, "x1"))
	assert.ErrorIs(t, err, hotswap.ErrUnsupported)
}

func TestRemoveSysGoal(t *testing.T) {
	s := load(t, grayTwoGoals)
	store := synth(t, s)
	mt, err := hotswap.NewMetric(s.Manager(), "x")
	require.NoError(t, err)
	added, err := hotswap.AddSysGoal(s, store, compile(t, s, "x0 && !x1"), hotswap.WithMetric(mt))
	require.NoError(t, err)
	before := dump(t, added.Store)

	// goals are now [00, 10, 11]; drop 11
	res, err := hotswap.RemoveSysGoal(added.Spec, added.Store, 2)
	require.NoError(t, err)
	assert.Equal(t, before, dump(t, added.Store))
	assert.Equal(t, 2, res.Index)
	require.Len(t, res.Spec.DeclaredSysGoals(), 2)

	require.Equal(t, 2, res.Store.Len())
	path := walk(t, res.Store, 2)
	assert.Equal(t, automaton.State{false, false}, path[0].State)
	assert.Equal(t, 1, path[0].Mode)
	assert.Equal(t, automaton.State{true, false}, path[1].State)
	assert.Equal(t, 0, path[1].Mode)
	assert.Equal(t, path[0].ID, path[2].ID)

	assertValid(t, res.Spec, res.Store)
}

func TestRemoveSysGoal_Preconditions(t *testing.T) {
	s := load(t, grayTwoGoals)
	store := synth(t, s)

	_, err := hotswap.RemoveSysGoal(s, store, 0)
	assert.ErrorIs(t, err, hotswap.ErrUnsupported, "two goals")

	added, err := hotswap.AddSysGoal(s, store, compile(t, s, "x0 && !x1"))
	require.NoError(t, err)
	for _, d := range []int{-1, 3} {
		_, err = hotswap.RemoveSysGoal(added.Spec, added.Store, d)
		assert.ErrorIs(t, err, hotswap.ErrUnsupported, "index %d", d)
	}
	// the initial node pursues goal 1
	_, err = hotswap.RemoveSysGoal(added.Spec, added.Store, 0)
	assert.ErrorIs(t, err, hotswap.ErrUnsupported)
	_, err = hotswap.RemoveSysGoal(added.Spec, added.Store, 1)
	assert.ErrorIs(t, err, hotswap.ErrUnsupported)

	lone := automaton.NewStore(2)
	id, err := lone.Insert(0, 0, true, automaton.State{false, false})
	require.NoError(t, err)
	require.NoError(t, lone.AddEdge(id, id))
	_, err = hotswap.RemoveSysGoal(added.Spec, lone, 1)
	assert.ErrorIs(t, err, hotswap.ErrGoalModeAbsent)
}

func TestOptions(t *testing.T) {
	s := load(t, grayTwoGoals)
	_, err := hotswap.RemoveSysGoal(s, automaton.NewStore(2), 0, hotswap.WithContext(nil))
	assert.ErrorIs(t, err, hotswap.ErrOptionViolation)
}
