// File: ops.go
// Role: Boolean connectives, quantification, remapping and comparisons.
//
// Every method returns an invalid Set once the Manager has failed; see Err.
package symbolic

import "github.com/dalzilio/rudd"

// And returns the conjunction of sets (true for none).
func (m *Manager) And(sets ...Set) Set {
	if !m.usable("and", sets...) {
		return Set{}
	}
	acc := m.bdd.True()
	for _, s := range sets {
		acc = m.bdd.Apply(acc, s.n, rudd.OPand)
		if acc == nil {
			m.fail("and")
			return Set{}
		}
	}
	return Set{n: acc}
}

// Or returns the disjunction of sets (false for none).
func (m *Manager) Or(sets ...Set) Set {
	if !m.usable("or", sets...) {
		return Set{}
	}
	acc := m.bdd.False()
	for _, s := range sets {
		acc = m.bdd.Apply(acc, s.n, rudd.OPor)
		if acc == nil {
			m.fail("or")
			return Set{}
		}
	}
	return Set{n: acc}
}

// Not returns the complement of s.
func (m *Manager) Not(s Set) Set {
	if !m.usable("not", s) {
		return Set{}
	}
	return m.wrap("not", m.bdd.Not(s.n))
}

// Imp returns a → b.
func (m *Manager) Imp(a, b Set) Set {
	if !m.usable("imp", a, b) {
		return Set{}
	}
	return m.wrap("imp", m.bdd.Apply(a.n, b.n, rudd.OPimp))
}

// Iff returns a ↔ b.
func (m *Manager) Iff(a, b Set) Set {
	if !m.usable("iff", a, b) {
		return Set{}
	}
	return m.wrap("iff", m.bdd.Apply(a.n, b.n, rudd.OPbiimp))
}

// Diff returns a ∧ ¬b.
func (m *Manager) Diff(a, b Set) Set {
	return m.And(a, m.Not(b))
}

// Ite returns (f ∧ g) ∨ (¬f ∧ h).
func (m *Manager) Ite(f, g, h Set) Set {
	if !m.usable("ite", f, g, h) {
		return Set{}
	}
	return m.wrap("ite", m.bdd.Ite(f.n, g.n, h.n))
}

// Exists quantifies s existentially over the given levels.
func (m *Manager) Exists(s Set, levels ...int) Set {
	if len(levels) == 0 {
		return s
	}
	return m.exist("exists", s, m.makeset(levels))
}

// Forall quantifies s universally over the given levels (¬∃¬).
func (m *Manager) Forall(s Set, levels ...int) Set {
	if len(levels) == 0 {
		return s
	}
	return m.Not(m.exist("forall", m.Not(s), m.makeset(levels)))
}

func (m *Manager) exist(op string, s, cube Set) Set {
	if !m.usable(op, s, cube) {
		return Set{}
	}
	return m.wrap(op, m.bdd.Exist(s.n, cube.n))
}

// ExistsEnv quantifies the current-state environment variables.
func (m *Manager) ExistsEnv(s Set) Set { return m.exist("exists env", s, m.cubeEnv) }

// ExistsSys quantifies the current-state system variables.
func (m *Manager) ExistsSys(s Set) Set { return m.exist("exists sys", s, m.cubeSys) }

// ExistsState quantifies every current-state variable.
func (m *Manager) ExistsState(s Set) Set { return m.exist("exists state", s, m.cubeState) }

// ExistsPrimed quantifies every next-state variable.
func (m *Manager) ExistsPrimed(s Set) Set { return m.exist("exists primed", s, m.cubePrimedAll) }

// ExistsPrimedSys quantifies the next-state system variables.
func (m *Manager) ExistsPrimedSys(s Set) Set {
	return m.exist("exists primed sys", s, m.cubePrimedSys)
}

// ForallPrimedEnv quantifies the next-state environment variables universally.
func (m *Manager) ForallPrimedEnv(s Set) Set {
	return m.Not(m.exist("forall primed env", m.Not(s), m.cubePrimedEnv))
}

// AndExistsPrimedSys returns ∃sys'.(a ∧ b) in a single engine pass.
func (m *Manager) AndExistsPrimedSys(a, b Set) Set {
	if !m.usable("appex", a, b, m.cubePrimedSys) {
		return Set{}
	}
	return m.wrap("appex", m.bdd.AppEx(a.n, b.n, rudd.OPand, m.cubePrimedSys.n))
}

// Prime renames current-state variables to their next-state copies.
// s is expected to mention current-state variables only.
func (m *Manager) Prime(s Set) Set {
	if !m.usable("prime", s) {
		return Set{}
	}
	return m.wrap("prime", m.bdd.Replace(s.n, m.toPrimed))
}

// Unprime renames next-state variables back to current-state ones.
// s is expected to mention next-state variables only.
func (m *Manager) Unprime(s Set) Set {
	if !m.usable("unprime", s) {
		return Set{}
	}
	return m.wrap("unprime", m.bdd.Replace(s.n, m.toUnprimed))
}

// Equal reports whether a and b denote the same function.
// Invalid sets are never equal.
func (m *Manager) Equal(a, b Set) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	return *a.n == *b.n
}

// IsFalse reports whether s is the empty set.
func (m *Manager) IsFalse(s Set) bool {
	return s.Valid() && *s.n == *m.bdd.False()
}

// IsTrue reports whether s is the universe.
func (m *Manager) IsTrue(s Set) bool {
	return s.Valid() && *s.n == *m.bdd.True()
}

// Subset reports whether a ⊆ b.
func (m *Manager) Subset(a, b Set) bool {
	return m.IsFalse(m.Diff(a, b))
}
