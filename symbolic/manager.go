// File: manager.go
// Role: Manager construction, variable catalog, constants and literals.
//
// Determinism:
//   - Variable levels follow declaration order: env vars, then sys vars,
//     then the primed copies in the same order.
package symbolic

import (
	"fmt"
	"strings"

	"github.com/dalzilio/rudd"
)

// Manager owns one BDD universe for a fixed, ordered set of state variables.
type Manager struct {
	bdd *rudd.BDD

	env   []string
	sys   []string
	index map[string]int
	width int

	toPrimed   rudd.Replacer
	toUnprimed rudd.Replacer

	// Quantification cubes, built once.
	cubeEnv       Set
	cubeSys       Set
	cubeState     Set
	cubePrimedEnv Set
	cubePrimedSys Set
	cubePrimedAll Set
	levelsState   []int
	levelsEnv     []int
	levelsSys     []int
	levelsPrimed  []int
	levelsPrimEnv []int
	levelsPrimSys []int

	err error
}

// New builds a Manager over the given environment and system variables.
//
// Errors:
//   - ErrNoVariables if both lists are empty.
//   - ErrEmptyVariable / ErrDuplicateVariable for bad names.
//   - ErrOptionViolation for bad options.
//   - ErrOperation if the BDD engine cannot be created.
func New(envVars, sysVars []string, opts ...Option) (*Manager, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	width := len(envVars) + len(sysVars)
	if width == 0 {
		return nil, ErrNoVariables
	}

	m := &Manager{
		env:   append([]string(nil), envVars...),
		sys:   append([]string(nil), sysVars...),
		index: make(map[string]int, width),
		width: width,
	}
	for i, name := range append(append([]string(nil), envVars...), sysVars...) {
		if name == "" {
			return nil, ErrEmptyVariable
		}
		if _, dup := m.index[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateVariable, name)
		}
		m.index[name] = i
	}

	bdd, err := newBDD(2*width, o)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOperation, err)
	}
	m.bdd = bdd

	m.buildLevels()
	if err := m.buildReplacers(); err != nil {
		return nil, err
	}
	m.cubeEnv = m.makeset(m.levelsEnv)
	m.cubeSys = m.makeset(m.levelsSys)
	m.cubeState = m.makeset(m.levelsState)
	m.cubePrimedEnv = m.makeset(m.levelsPrimEnv)
	m.cubePrimedSys = m.makeset(m.levelsPrimSys)
	m.cubePrimedAll = m.makeset(m.levelsPrimed)

	return m, m.err
}

// newBDD creates the engine, passing only the knobs that were set.
func newBDD(varnum int, o Options) (*rudd.BDD, error) {
	switch {
	case o.NodeSize > 0 && o.CacheSize > 0:
		return rudd.New(varnum, rudd.Nodesize(o.NodeSize), rudd.Cachesize(o.CacheSize))
	case o.NodeSize > 0:
		return rudd.New(varnum, rudd.Nodesize(o.NodeSize))
	case o.CacheSize > 0:
		return rudd.New(varnum, rudd.Cachesize(o.CacheSize))
	default:
		return rudd.New(varnum)
	}
}

func (m *Manager) buildLevels() {
	ne := len(m.env)
	for i := 0; i < m.width; i++ {
		m.levelsState = append(m.levelsState, i)
		m.levelsPrimed = append(m.levelsPrimed, m.width+i)
		if i < ne {
			m.levelsEnv = append(m.levelsEnv, i)
			m.levelsPrimEnv = append(m.levelsPrimEnv, m.width+i)
		} else {
			m.levelsSys = append(m.levelsSys, i)
			m.levelsPrimSys = append(m.levelsPrimSys, m.width+i)
		}
	}
}

func (m *Manager) buildReplacers() error {
	var err error
	m.toPrimed, err = m.bdd.NewReplacer(m.levelsState, m.levelsPrimed)
	if err != nil {
		return fmt.Errorf("%w: primed replacer: %v", ErrOperation, err)
	}
	m.toUnprimed, err = m.bdd.NewReplacer(m.levelsPrimed, m.levelsState)
	if err != nil {
		return fmt.Errorf("%w: unprimed replacer: %v", ErrOperation, err)
	}
	return nil
}

func (m *Manager) makeset(levels []int) Set {
	if len(levels) == 0 {
		return m.True()
	}
	return m.wrap("makeset", m.bdd.Makeset(levels))
}

// wrap turns a raw node into a Set, recording the engine error on nil.
func (m *Manager) wrap(op string, n rudd.Node) Set {
	if n == nil {
		m.fail(op)
		return Set{}
	}
	return Set{n: n}
}

func (m *Manager) fail(op string) {
	if m.err != nil {
		return
	}
	msg := m.bdd.Error()
	if msg == "" {
		msg = "invalid operand"
	}
	m.err = fmt.Errorf("%w: %s: %s", ErrOperation, op, msg)
}

// usable reports whether every operand is valid and no earlier failure
// has been recorded; otherwise it records op as the failing operation.
func (m *Manager) usable(op string, sets ...Set) bool {
	if m.err != nil {
		return false
	}
	for _, s := range sets {
		if !s.Valid() {
			m.fail(op)
			return false
		}
	}
	return true
}

// Err returns the first recorded engine failure, or nil.
func (m *Manager) Err() error { return m.err }

// NumEnv returns the number of environment variables.
func (m *Manager) NumEnv() int { return len(m.env) }

// NumSys returns the number of system variables.
func (m *Manager) NumSys() int { return len(m.sys) }

// Width returns numEnv+numSys, the length of a state vector.
func (m *Manager) Width() int { return m.width }

// EnvVars returns a copy of the environment variable names.
func (m *Manager) EnvVars() []string { return append([]string(nil), m.env...) }

// SysVars returns a copy of the system variable names.
func (m *Manager) SysVars() []string { return append([]string(nil), m.sys...) }

// VarIndex returns the state-vector position of a variable.
func (m *Manager) VarIndex(name string) (int, bool) {
	i, ok := m.index[name]
	return i, ok
}

// VarName returns the name at state-vector position i.
func (m *Manager) VarName(i int) string {
	if i < len(m.env) {
		return m.env[i]
	}
	return m.sys[i-len(m.env)]
}

// IsEnv reports whether state-vector position i is an environment variable.
func (m *Manager) IsEnv(i int) bool { return i < len(m.env) }

// StateLevels returns the unprimed levels [0, w).
func (m *Manager) StateLevels() []int { return append([]int(nil), m.levelsState...) }

// EnvLevels returns the unprimed environment levels.
func (m *Manager) EnvLevels() []int { return append([]int(nil), m.levelsEnv...) }

// SysLevels returns the unprimed system levels.
func (m *Manager) SysLevels() []int { return append([]int(nil), m.levelsSys...) }

// PrimedLevels returns the primed levels [w, 2w).
func (m *Manager) PrimedLevels() []int { return append([]int(nil), m.levelsPrimed...) }

// PrimedEnvLevels returns the primed environment levels.
func (m *Manager) PrimedEnvLevels() []int { return append([]int(nil), m.levelsPrimEnv...) }

// PrimedSysLevels returns the primed system levels.
func (m *Manager) PrimedSysLevels() []int { return append([]int(nil), m.levelsPrimSys...) }

// True returns the constant-true function.
func (m *Manager) True() Set { return m.wrap("true", m.bdd.True()) }

// False returns the constant-false function.
func (m *Manager) False() Set { return m.wrap("false", m.bdd.False()) }

// Var returns the current-state literal of variable i.
func (m *Manager) Var(i int) Set {
	if i < 0 || i >= m.width {
		m.fail(fmt.Sprintf("var %d", i))
		return Set{}
	}
	return m.wrap("ithvar", m.bdd.Ithvar(i))
}

// PrimedVar returns the next-state literal of variable i.
func (m *Manager) PrimedVar(i int) Set {
	if i < 0 || i >= m.width {
		m.fail(fmt.Sprintf("primed var %d", i))
		return Set{}
	}
	return m.wrap("ithvar", m.bdd.Ithvar(m.width+i))
}

// Describe renders a state vector as "name=value" pairs for logs.
func (m *Manager) Describe(state []bool) string {
	var b strings.Builder
	for i, v := range state {
		if i >= m.width {
			break
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(m.VarName(i))
		if v {
			b.WriteString("=1")
		} else {
			b.WriteString("=0")
		}
	}
	return b.String()
}
