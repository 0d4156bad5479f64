package automaton

import (
	"errors"
	"strings"
)

// Sentinel errors for automaton operations.
var (
	// ErrNodeNotFound indicates an id or (mode, state) pair with no live node.
	ErrNodeNotFound = errors.New("automaton: node not found")

	// ErrStateWidth indicates a state vector of the wrong length.
	ErrStateWidth = errors.New("automaton: state width mismatch")

	// ErrFormat indicates malformed serialized automaton data.
	ErrFormat = errors.New("automaton: malformed input")

	// ErrVersion indicates an unsupported gr1c format version.
	ErrVersion = errors.New("automaton: unsupported format version")
)

// NodeID is a stable arena index. Ids are never reused by a Store.
type NodeID int

// None is the absent node id.
const None NodeID = -1

// State is an assignment to the state variables, environment first.
type State []bool

// Clone returns an independent copy of s.
func (s State) Clone() State { return append(State(nil), s...) }

// Equal reports element-wise equality.
func (s State) Equal(o State) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// String renders s as a bit string, e.g. "0110".
func (s State) String() string {
	var b strings.Builder
	b.Grow(len(s))
	for _, v := range s {
		if v {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Env returns the first numEnv entries.
func (s State) Env(numEnv int) State { return s[:numEnv] }

// Sys returns the entries after the first numEnv.
func (s State) Sys(numEnv int) State { return s[numEnv:] }

// Concat joins an environment part and a system part into a fresh State.
func Concat(env, sys []bool) State {
	out := make(State, 0, len(env)+len(sys))
	out = append(out, env...)
	return append(out, sys...)
}

// Node is one automaton vertex.
//
// Identity is the pair (Mode, State). Rank -1 means unset. Trans holds the
// ids of successor nodes in the same Store, in insertion order.
type Node struct {
	ID      NodeID
	State   State
	Mode    int
	Rank    int
	Initial bool
	Trans   []NodeID
}

type key struct {
	mode  int
	state string
}

func keyOf(mode int, s State) key { return key{mode: mode, state: s.String()} }
