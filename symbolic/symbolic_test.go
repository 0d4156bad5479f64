package symbolic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gr1synth/symbolic"
)

func newManager(t *testing.T, env, sys []string) *symbolic.Manager {
	t.Helper()
	m, err := symbolic.New(env, sys)
	require.NoError(t, err)
	return m
}

func TestNew_Validation(t *testing.T) {
	_, err := symbolic.New(nil, nil)
	assert.ErrorIs(t, err, symbolic.ErrNoVariables)

	_, err = symbolic.New([]string{"a"}, []string{"a"})
	assert.ErrorIs(t, err, symbolic.ErrDuplicateVariable)

	_, err = symbolic.New([]string{""}, nil)
	assert.ErrorIs(t, err, symbolic.ErrEmptyVariable)

	_, err = symbolic.New([]string{"a"}, nil, symbolic.WithNodeSize(-1))
	assert.ErrorIs(t, err, symbolic.ErrOptionViolation)
}

func TestManager_Catalog(t *testing.T) {
	m := newManager(t, []string{"e1", "e2"}, []string{"s"})
	assert.Equal(t, 2, m.NumEnv())
	assert.Equal(t, 1, m.NumSys())
	assert.Equal(t, 3, m.Width())
	i, ok := m.VarIndex("s")
	assert.True(t, ok)
	assert.Equal(t, 2, i)
	assert.Equal(t, "e2", m.VarName(1))
	assert.True(t, m.IsEnv(1))
	assert.False(t, m.IsEnv(2))
	assert.Equal(t, []int{3, 4, 5}, m.PrimedLevels())
	assert.Equal(t, []int{5}, m.PrimedSysLevels())
	assert.Equal(t, "e1=1 e2=0 s=1", m.Describe([]bool{true, false, true}))
}

func TestOps_BasicIdentities(t *testing.T) {
	m := newManager(t, []string{"e"}, []string{"s"})
	e, s := m.Var(0), m.Var(1)

	assert.True(t, m.IsTrue(m.Or(e, m.Not(e))))
	assert.True(t, m.IsFalse(m.And(e, m.Not(e))))
	assert.True(t, m.IsTrue(m.And()))
	assert.True(t, m.IsFalse(m.Or()))
	assert.True(t, m.Equal(m.Imp(e, s), m.Or(m.Not(e), s)))
	assert.True(t, m.Equal(m.Iff(e, s), m.Iff(s, e)))
	assert.True(t, m.Equal(m.Ite(e, s, m.False()), m.And(e, s)))
	assert.True(t, m.Subset(m.And(e, s), e))
	assert.False(t, m.Subset(e, s))
	require.NoError(t, m.Err())
}

func TestOps_Quantifiers(t *testing.T) {
	m := newManager(t, []string{"e"}, []string{"s"})
	e, s := m.Var(0), m.Var(1)

	assert.True(t, m.Equal(m.ExistsSys(m.And(e, s)), e))
	assert.True(t, m.IsFalse(m.ForallPrimedEnv(m.PrimedVar(0))))
	assert.True(t, m.Equal(m.Forall(m.Or(e, s), 0), s))
	assert.True(t, m.Equal(m.Exists(m.And(e, s), 0, 1), m.True()))

	// ∃s'.(s' ∧ e) == e
	got := m.AndExistsPrimedSys(m.PrimedVar(1), e)
	assert.True(t, m.Equal(got, e))
}

func TestOps_PrimeRoundTrip(t *testing.T) {
	m := newManager(t, []string{"e"}, []string{"s"})
	f := m.And(m.Var(0), m.Not(m.Var(1)))
	p := m.Prime(f)
	assert.True(t, m.Equal(p, m.And(m.PrimedVar(0), m.Not(m.PrimedVar(1)))))
	assert.True(t, m.Equal(m.Unprime(p), f))
}

func TestCube_StateAndCofactor(t *testing.T) {
	m := newManager(t, []string{"e"}, []string{"s"})
	st := m.StateSet([]bool{true, false})
	assert.True(t, m.Contains(st, []bool{true, false}))
	assert.False(t, m.Contains(st, []bool{true, true}))

	// (e → s') cofactored by e=1 is s'
	rel := m.Imp(m.Var(0), m.PrimedVar(1))
	got := m.CofactorEnv(rel, []bool{true})
	assert.True(t, m.Equal(got, m.PrimedVar(1)))
	got = m.CofactorState(rel, []bool{false, true})
	assert.True(t, m.IsTrue(got))

	// wrong width is sticky
	_ = m.StateSet([]bool{true})
	assert.ErrorIs(t, m.Err(), symbolic.ErrWidth)
	assert.False(t, m.And(m.True()).Valid())
}

func TestCube_MintermsExpandDontCares(t *testing.T) {
	m := newManager(t, []string{"a", "b"}, []string{"c"})
	// a ∧ c, b free
	f := m.And(m.Var(0), m.Var(2))
	states, err := m.States(f)
	require.NoError(t, err)
	assert.Equal(t, [][]bool{
		{true, false, true},
		{true, true, true},
	}, states)

	envOnly, err := m.Minterms(m.True(), m.EnvLevels())
	require.NoError(t, err)
	assert.Len(t, envOnly, 4)
	assert.Equal(t, []bool{false, false}, envOnly[0])
	assert.Equal(t, []bool{true, true}, envOnly[3])
}

func TestCube_FirstMintermAndCount(t *testing.T) {
	m := newManager(t, []string{"a"}, []string{"b"})
	first, ok := m.FirstMinterm(m.Var(1), m.StateLevels())
	assert.True(t, ok)
	assert.Equal(t, []bool{false, true}, first)

	_, ok = m.FirstMinterm(m.False(), m.StateLevels())
	assert.False(t, ok)

	n, err := m.CountStates(m.Var(0))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n.Int64())

	n, err = m.CountStates(m.And(m.Var(0), m.PrimedVar(1)))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n.Int64())
}

func TestCubes_StopEarly(t *testing.T) {
	m := newManager(t, []string{"a", "b"}, []string{"c"})
	f := m.Or(m.Var(0), m.Var(1))
	calls := 0
	err := m.Cubes(f, func([]int) bool {
		calls++
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
