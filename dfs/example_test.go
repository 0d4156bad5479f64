package dfs_test

import (
	"fmt"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/dfs"
)

// ExampleDFS prints the post-order of a three-node cycle.
func ExampleDFS() {
	s := automaton.NewStore(1)
	a, _ := s.Insert(0, 2, true, automaton.State{false})
	b, _ := s.Insert(0, 1, false, automaton.State{true})
	c, _ := s.Insert(1, 2, false, automaton.State{true})
	_ = s.AddEdge(a, b)
	_ = s.AddEdge(b, c)
	_ = s.AddEdge(c, a)

	res, err := dfs.DFS(s, a)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(res.Order)
	// Output:
	// [2 1 0]
}
