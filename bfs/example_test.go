package bfs_test

import (
	"fmt"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/bfs"
)

// ExampleBFS walks a small automaton from its initial node.
func ExampleBFS() {
	s := automaton.NewStore(1)
	a, _ := s.Insert(0, 1, true, automaton.State{false})
	b, _ := s.Insert(0, 0, false, automaton.State{true})
	c, _ := s.Insert(1, 1, false, automaton.State{true})
	_ = s.AddEdge(a, b)
	_ = s.AddEdge(a, c)
	_ = s.AddEdge(b, a)

	res, err := bfs.BFS(s, s.Initial())
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(res.Order, res.Depth[c])
	// Output:
	// [0 1 2] 1
}
