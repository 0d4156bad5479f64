package hotswap_test

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/gr1synth/hotswap"
	"github.com/katalvlaran/gr1synth/solve"
	"github.com/katalvlaran/gr1synth/spec"
)

// ExampleAddSysGoal inserts a goal between the two goals of a strategy
// that walks a two-bit Gray code, then removes the original second goal.
func ExampleAddSysGoal() {
	s, _, _ := spec.Load(strings.NewReader(`
sys: [x0, x1]
sys_init: "!x0 && !x1"
sys_trans: ["x0' == x0 || x1' == x1"]
sys_goals: ["!x0 && !x1", "x0 && x1"]
`))
	res, _ := solve.Synthesize(s)

	mt, _ := hotswap.NewMetric(s.Manager(), "x")
	goal, _ := spec.Compile(s.Manager(), "x0 && !x1", spec.ScopeState)
	added, err := hotswap.AddSysGoal(s, res.Strategy, goal, hotswap.WithMetric(mt))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("inserted at", added.Index, "goals", len(added.Spec.DeclaredSysGoals()))

	removed, err := hotswap.RemoveSysGoal(added.Spec, added.Store, 2)
	if err != nil {
		fmt.Println(err)
		return
	}
	rep, _ := solve.Verify(removed.Spec, removed.Store)
	fmt.Println("nodes", removed.Store.Len(), "ok", rep.OK())
	// Output:
	// inserted at 1 goals 3
	// nodes 2 ok true
}
