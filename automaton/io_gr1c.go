// File: io_gr1c.go
// Role: Read and write the gr1c plain-text automaton format.
//
// Format (one node per line, fields separated by whitespace):
//
//	v0: id s_0 ... s_{w-1} mode rank t_0 t_1 ...
//	v1: id s_0 ... s_{w-1} initial mode rank t_0 t_1 ...
//
// An optional first data line holding a single integer is the version;
// without it the data is read as v0. Blank lines and lines starting with
// '#' are skipped. Node ids must be exactly 0..n-1 in any order.
package automaton

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Supported gr1c text versions.
const (
	GR1CVersion0 = 0
	GR1CVersion1 = 1
)

type rawNode struct {
	state   State
	initial bool
	mode    int
	rank    int
	trans   []int
}

// ReadGR1C parses a gr1c text automaton with states of the given width.
// It returns the store (ids equal the file's node ids) and the version read.
func ReadGR1C(r io.Reader, width int) (*Store, int, error) {
	if width < 1 {
		return nil, 0, fmt.Errorf("%w: width %d", ErrStateWidth, width)
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	version := -1
	byID := make(map[int]rawNode)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		ints := make([]int, len(fields))
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: line %d: %q is not an integer", ErrFormat, lineNum, f)
			}
			ints[i] = v
		}
		if version < 0 {
			if len(ints) == 1 {
				version = ints[0]
				if version != GR1CVersion0 && version != GR1CVersion1 {
					return nil, 0, fmt.Errorf("%w: %d", ErrVersion, version)
				}
				continue
			}
			version = GR1CVersion0
		}
		id, n, err := parseGR1CLine(ints, width, version)
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if _, dup := byID[id]; dup {
			return nil, 0, fmt.Errorf("%w: line %d: duplicate node id %d", ErrFormat, lineNum, id)
		}
		byID[id] = n
	}
	if err := sc.Err(); err != nil {
		return nil, 0, err
	}
	if version < 0 {
		version = GR1CVersion0
	}

	s := NewStore(width)
	for id := 0; id < len(byID); id++ {
		n, ok := byID[id]
		if !ok {
			return nil, 0, fmt.Errorf("%w: missing node id %d", ErrFormat, id)
		}
		if _, err := s.Insert(n.mode, n.rank, n.initial, n.state); err != nil {
			return nil, 0, err
		}
	}
	for id := 0; id < len(byID); id++ {
		node := s.nodes[id]
		for _, t := range byID[id].trans {
			if t < 0 || t >= len(byID) {
				return nil, 0, fmt.Errorf("%w: node %d: edge to missing id %d", ErrFormat, id, t)
			}
			node.Trans = append(node.Trans, NodeID(t))
		}
	}
	return s, version, nil
}

func parseGR1CLine(ints []int, width, version int) (int, rawNode, error) {
	head := 1 + width + 2
	if version == GR1CVersion1 {
		head++
	}
	if len(ints) < head {
		return 0, rawNode{}, fmt.Errorf("%w: want at least %d fields, got %d", ErrFormat, head, len(ints))
	}
	var n rawNode
	id := ints[0]
	n.state = make(State, width)
	for i := 0; i < width; i++ {
		switch ints[1+i] {
		case 0:
		case 1:
			n.state[i] = true
		default:
			return 0, rawNode{}, fmt.Errorf("%w: state value %d", ErrFormat, ints[1+i])
		}
	}
	pos := 1 + width
	if version == GR1CVersion1 {
		switch ints[pos] {
		case 0:
		case 1:
			n.initial = true
		default:
			return 0, rawNode{}, fmt.Errorf("%w: initial field %d", ErrFormat, ints[pos])
		}
		pos++
	}
	n.mode, n.rank = ints[pos], ints[pos+1]
	n.trans = append([]int(nil), ints[pos+2:]...)
	return id, n, nil
}

// WriteGR1C writes s in gr1c text format, numbering nodes by their
// position in Nodes() order.
func WriteGR1C(w io.Writer, s *Store, version int) error {
	if version != GR1CVersion0 && version != GR1CVersion1 {
		return fmt.Errorf("%w: %d", ErrVersion, version)
	}
	pos := positions(s)
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", version)
	for i, n := range s.Nodes() {
		bw.WriteString(strconv.Itoa(i))
		for _, v := range n.State {
			if v {
				bw.WriteString(" 1")
			} else {
				bw.WriteString(" 0")
			}
		}
		if version == GR1CVersion1 {
			fmt.Fprintf(bw, " %d", boolInt(n.Initial))
		}
		fmt.Fprintf(bw, " %d %d", n.Mode, n.Rank)
		for _, t := range n.Trans {
			fmt.Fprintf(bw, " %d", pos[t])
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// positions maps live ids to their dense position in Nodes() order.
func positions(s *Store) map[NodeID]int {
	pos := make(map[NodeID]int, s.live)
	for i, id := range s.IDs() {
		pos[id] = i
	}
	return pos
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
