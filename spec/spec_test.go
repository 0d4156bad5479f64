package spec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gr1synth/spec"
	"github.com/katalvlaran/gr1synth/symbolic"
)

const arbiter = `
env: [req]
sys: [grant]
sys_init: "!grant"
sys_trans:
  - "implies(req, grant')"
  - "implies(!req, !grant')"
env_goals: ["!req"]
sys_goals: ["!grant"]
`

func TestParseInitMode(t *testing.T) {
	cases := map[string]spec.InitMode{
		"":                       spec.AllEnvExistSysInit,
		"ALL_ENV_EXIST_SYS_INIT": spec.AllEnvExistSysInit,
		"all_init":               spec.AllInit,
		" ONE_SIDE_INIT ":        spec.OneSideInit,
	}
	for in, want := range cases {
		got, err := spec.ParseInitMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := spec.ParseInitMode("SOMETIMES")
	assert.ErrorIs(t, err, spec.ErrUndefinedInitMode)
	assert.Equal(t, "ONE_SIDE_INIT", spec.OneSideInit.String())
	assert.False(t, spec.InitMode(7).Valid())
}

func TestCompile_Operators(t *testing.T) {
	m, err := symbolic.New([]string{"a"}, []string{"b"})
	require.NoError(t, err)
	a, b := m.Var(0), m.Var(1)

	cases := []struct {
		src  string
		want symbolic.Set
	}{
		{"a && b", m.And(a, b)},
		{"a and !b", m.And(a, m.Not(b))},
		{"a || not b", m.Or(a, m.Not(b))},
		{"a == b", m.Iff(a, b)},
		{"a != b", m.Not(m.Iff(a, b))},
		{"implies(a, b)", m.Imp(a, b)},
		{"iff(a, true)", a},
		{"xor(a, 0)", a},
		{"a ? b : false", m.And(a, b)},
		{"b == 1", b},
	}
	for _, tc := range cases {
		got, err := spec.Compile(m, tc.src, spec.ScopeState)
		require.NoError(t, err, tc.src)
		assert.True(t, m.Equal(tc.want, got), tc.src)
	}
}

func TestCompile_PrimedScopes(t *testing.T) {
	m, err := symbolic.New([]string{"a"}, []string{"b"})
	require.NoError(t, err)

	got, err := spec.Compile(m, "a' && b'", spec.ScopeSysTrans)
	require.NoError(t, err)
	assert.True(t, m.Equal(m.And(m.PrimedVar(0), m.PrimedVar(1)), got))

	_, err = spec.Compile(m, "a'", spec.ScopeState)
	assert.ErrorIs(t, err, spec.ErrFormula)

	_, err = spec.Compile(m, "b'", spec.ScopeEnvTrans)
	assert.ErrorIs(t, err, spec.ErrFormula)

	_, err = spec.Compile(m, "a'", spec.ScopeEnvTrans)
	assert.NoError(t, err)
}

func TestCompile_Errors(t *testing.T) {
	m, err := symbolic.New([]string{"a"}, nil)
	require.NoError(t, err)

	_, err = spec.Compile(m, "zz", spec.ScopeState)
	assert.ErrorIs(t, err, spec.ErrUnknownVariable)
	_, err = spec.Compile(m, "a &&", spec.ScopeState)
	assert.ErrorIs(t, err, spec.ErrFormula)
	_, err = spec.Compile(m, "a + a", spec.ScopeState)
	assert.ErrorIs(t, err, spec.ErrFormula)
	_, err = spec.Compile(m, "2", spec.ScopeState)
	assert.ErrorIs(t, err, spec.ErrFormula)
}

func TestLoad_Arbiter(t *testing.T) {
	s, doc, err := spec.Load(strings.NewReader(arbiter))
	require.NoError(t, err)
	assert.Equal(t, 1, s.NumEnv())
	assert.Equal(t, 1, s.NumSys())
	assert.Equal(t, spec.AllEnvExistSysInit, s.InitMode())
	assert.False(t, s.EnvInitDeclared())
	assert.True(t, s.SysInitDeclared())
	assert.Len(t, s.SysTransParts(), 2)
	assert.Len(t, s.EnvTransParts(), 0)
	assert.True(t, s.Manager().IsTrue(s.EnvTrans()))
	assert.Len(t, s.SysGoals(), 1)

	d1, err := doc.Digest()
	require.NoError(t, err)
	d2, err := doc.Clone().Digest()
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]string{
		"no vars":       "sys_goals: [\"true\"]\n",
		"bad name":      "env: [\"1x\"]\n",
		"dup":           "env: [x]\nsys: [x]\n",
		"unknown field": "env: [x]\nbogus: 1\n",
		"bad mode":      "env: [x]\ninit_mode: MAYBE\n",
		"empty goal":    "env: [x]\nsys_goals: [\"\"]\n",
	}
	for name, src := range cases {
		_, _, err := spec.Load(strings.NewReader(src))
		assert.Error(t, err, name)
	}
	_, _, err := spec.Load(strings.NewReader("env: [x]\ninit_mode: MAYBE\n"))
	assert.ErrorIs(t, err, spec.ErrUndefinedInitMode)
	_, _, err = spec.Load(strings.NewReader("env: [x]\nsys_goals: [\"y\"]\n"))
	assert.ErrorIs(t, err, spec.ErrUnknownVariable)
}

func TestSpec_DefaultGoalsAndCopies(t *testing.T) {
	m, err := symbolic.New([]string{"e"}, []string{"s"})
	require.NoError(t, err)
	s, err := spec.New(m)
	require.NoError(t, err)
	require.Len(t, s.EnvGoals(), 1)
	assert.True(t, m.IsTrue(s.EnvGoals()[0]))
	require.Len(t, s.SysGoals(), 1)
	assert.True(t, m.IsTrue(s.SysGoals()[0]))

	s2, err := s.WithSysGoalInserted(0, m.Var(1))
	require.NoError(t, err)
	assert.Len(t, s2.DeclaredSysGoals(), 1)
	assert.Len(t, s.DeclaredSysGoals(), 0)

	s3, err := s2.WithSysGoalRemoved(0)
	require.NoError(t, err)
	assert.Len(t, s3.DeclaredSysGoals(), 0)
	_, err = s3.WithSysGoalRemoved(0)
	assert.ErrorIs(t, err, spec.ErrInvalidSpec)

	_, err = spec.New(m, spec.WithInitMode(spec.InitMode(9)))
	assert.ErrorIs(t, err, spec.ErrUndefinedInitMode)
	_, err = spec.New(m, spec.WithSysGoals(symbolic.Set{}))
	assert.ErrorIs(t, err, spec.ErrOptionViolation)
	_, err = spec.New(nil)
	assert.ErrorIs(t, err, spec.ErrInvalidSpec)
}

func TestDocument_GoalEdits(t *testing.T) {
	doc, err := spec.ParseDocument(strings.NewReader(arbiter))
	require.NoError(t, err)
	d2, err := doc.InsertSysGoal(1, "grant")
	require.NoError(t, err)
	assert.Equal(t, []string{"!grant", "grant"}, d2.SysGoals)
	assert.Equal(t, []string{"!grant"}, doc.SysGoals)
	d3, err := d2.RemoveSysGoal(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"grant"}, d3.SysGoals)

	out, err := d3.Marshal()
	require.NoError(t, err)
	back, err := spec.ParseDocument(strings.NewReader(string(out)))
	require.NoError(t, err)
	assert.Equal(t, d3.SysGoals, back.SysGoals)
	assert.Equal(t, d3.SysTrans, back.SysTrans)
}
