package automaton

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteDOT writes s as a Graphviz digraph. Each node is labelled with its
// position, "(mode, rank)" and its variable assignment; initial nodes get
// an arrow from an invisible source.
func WriteDOT(w io.Writer, s *Store, envVars, sysVars []string) error {
	names := append(append([]string(nil), envVars...), sysVars...)
	if len(names) != s.width {
		return fmt.Errorf("%w: %d names for width %d", ErrStateWidth, len(names), s.width)
	}
	pos := positions(s)
	labels := make(map[NodeID]string, s.live)
	for _, n := range s.Nodes() {
		labels[n.ID] = dotLabel(pos[n.ID], n, names)
	}

	bw := bufio.NewWriter(w)
	bw.WriteString("digraph A {\n    \"\" [shape=none]\n")
	for _, n := range s.Nodes() {
		if n.Initial {
			fmt.Fprintf(bw, "    \"\" -> \"%s\"\n", labels[n.ID])
		}
		if len(n.Trans) == 0 {
			fmt.Fprintf(bw, "    \"%s\"\n", labels[n.ID])
		}
		for _, t := range n.Trans {
			fmt.Fprintf(bw, "    \"%s\" -> \"%s\"\n", labels[n.ID], labels[t])
		}
	}
	bw.WriteString("}\n")
	return bw.Flush()
}

func dotLabel(pos int, n *Node, names []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d;\\n(%d, %d)\\n", pos, n.Mode, n.Rank)
	for i, v := range n.State {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%d", names[i], boolInt(v))
	}
	return b.String()
}
