package solve_test

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/gr1synth/solve"
	"github.com/katalvlaran/gr1synth/spec"
)

// ExampleSynthesize extracts a strategy for a system that must keep
// visiting s while the environment toggles e freely.
func ExampleSynthesize() {
	s, _, err := spec.Load(strings.NewReader(`
env: [e]
sys: [s]
sys_goals: ["s"]
`))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	res, err := solve.Synthesize(s)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("realizable:", res.Realizable)
	for _, n := range res.Strategy.Nodes() {
		fmt.Println(n.ID, n.State, n.Initial, n.Rank, n.Trans)
	}
	// Output:
	// realizable: true
	// 0 00 true 1 [2 3]
	// 1 10 true 1 [2 3]
	// 2 01 false 0 [2 3]
	// 3 11 false 0 [2 3]
}
