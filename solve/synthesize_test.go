package solve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/solve"
	"github.com/katalvlaran/gr1synth/spec"
)

// the system may only move while r holds; r must hold infinitely often.
const relaySpec = `
env: [r]
sys: [g0, g1]
sys_init: "!g0 && !g1"
sys_trans: ["implies(!r, g0' == g0 && g1' == g1)"]
env_goals: ["r"]
sys_goals: ["g0 && !g1", "g1 && !g0", "!g0 && !g1"]
`

// holding lock freezes r low, so g is never needed.
const lockSpec = `
env: [r]
sys: [lock, g]
env_init: "!r"
sys_init: "lock && !g"
env_trans: ["implies(lock, r' == r)"]
sys_trans: ["lock' == lock", "!g'"]
env_goals: ["r"]
sys_goals: ["!g", "g"]
`

// the environment has no move once s is set.
const deadlockSpec = `
env: [e]
sys: [s]
sys_init: "s"
env_trans: ["!s || e'", "!s || !e'"]
sys_goals: ["!s"]
`

// gray code walk with two goals and no environment.
const graySpec = `
sys: [x0, x1]
sys_init: "!x0 && !x1"
sys_trans: ["x0' == x0 || x1' == x1"]
sys_goals: ["!x0 && !x1", "x0 && x1"]
`

// walk follows the strategy from its first initial node, taking the
// successors of every node in turn, and counts how often each system goal
// holds along the way. A node with no successor ends the walk.
func walk(s *spec.Spec, store *automaton.Store, steps int) []int {
	m := s.Manager()
	goals := s.SysGoals()
	hits := make([]int, len(goals))
	turn := map[automaton.NodeID]int{}
	cur := store.Initial()[0]
	for step := 0; step < steps; step++ {
		succ := store.Successors(cur)
		if len(succ) == 0 {
			break
		}
		next := succ[turn[cur]%len(succ)]
		turn[cur]++
		cur = next
		for i, g := range goals {
			if m.Contains(g, store.MustGet(cur).State) {
				hits[i]++
			}
		}
	}
	return hits
}

func TestSynthesize_Verified(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		nodes int
		// live is set when every goal must recur along a fair walk.
		live  bool
	}{
		{"free", freeSpec, 4, true},
		{"ladder", ladderSpec, 3, true},
		{"arbiter", arbiterSpec, 0, true},
		{"gray", graySpec, 0, true},
		{"relay", relaySpec, 0, true},
		{"lock", lockSpec, 1, false},
		{"deadlock", deadlockSpec, 2, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := load(t, tc.src)
			res, err := solve.Synthesize(s)
			require.NoError(t, err)
			require.True(t, res.Realizable)
			store := res.Strategy
			if tc.nodes > 0 {
				assert.Equal(t, tc.nodes, store.Len())
			}

			rep, err := solve.Verify(s, store)
			require.NoError(t, err)
			assert.True(t, rep.OK(), "%v", rep.Violations)
			assert.Equal(t, store.Len(), rep.Checked)

			for _, n := range store.Nodes() {
				assert.GreaterOrEqual(t, n.Rank, 0, "node %d", n.ID)
			}
			if !tc.live {
				return
			}
			for i, h := range walk(s, store, 10*store.Len()) {
				assert.Positive(t, h, "goal %d never visited", i)
			}
		})
	}
}

func TestSynthesize_BlockingRanksAtOne(t *testing.T) {
	s := load(t, lockSpec)
	res, err := solve.Synthesize(s)
	require.NoError(t, err)
	require.True(t, res.Realizable)

	// the initial state meets goal 0 and moves on to goal 1, which it can
	// only avoid by keeping r low forever.
	n := res.Strategy.MustGet(res.Strategy.Initial()[0])
	assert.Equal(t, st(false, true, false), n.State)
	assert.Equal(t, 1, n.Mode)
	assert.Equal(t, 1, n.Rank)
	assert.Equal(t, []automaton.NodeID{n.ID}, n.Trans)
}

func TestSynthesize_DeadlockStatesHaveNoEdges(t *testing.T) {
	s := load(t, deadlockSpec)
	res, err := solve.Synthesize(s)
	require.NoError(t, err)
	require.True(t, res.Realizable)

	var states []string
	for _, n := range res.Strategy.Nodes() {
		assert.True(t, n.Initial)
		assert.Equal(t, 1, n.Rank)
		assert.Empty(t, n.Trans)
		states = append(states, n.State.String())
	}
	assert.ElementsMatch(t, []string{"01", "11"}, states)
}

func TestSynthesize_AllEnvExistSysInit(t *testing.T) {
	cases := []struct {
		name    string
		sysInit string
		want    []string
	}{
		{"free sys init", "", []string{"00", "10"}},
		{"sys follows env", "s == e", []string{"00", "11"}},
		{"sys fixed", "s", []string{"01", "11"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := freeSpec
			if tc.sysInit != "" {
				src += "sys_init: \"" + tc.sysInit + "\"\n"
			}
			s := load(t, src)
			require.Equal(t, spec.AllEnvExistSysInit, s.InitMode())
			res, err := solve.Synthesize(s)
			require.NoError(t, err)
			require.True(t, res.Realizable)

			var got []string
			for _, id := range res.Strategy.Initial() {
				got = append(got, res.Strategy.MustGet(id).State.String())
			}
			assert.ElementsMatch(t, tc.want, got)

			rep, err := solve.Verify(s, res.Strategy)
			require.NoError(t, err)
			assert.True(t, rep.OK(), "%v", rep.Violations)
		})
	}
}

func TestSynthesize_AllEnvExistSysInitUnrealizable(t *testing.T) {
	// with e high the only sys init is stuck low forever.
	s := load(t, `
env: [e]
sys: [s]
sys_init: "!e || !s"
sys_trans: ["implies(e && !s, !s')"]
env_trans: ["e' == e"]
sys_goals: ["s"]
`)
	res, err := solve.Synthesize(s)
	require.NoError(t, err)
	assert.False(t, res.Realizable)
}
