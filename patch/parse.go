// File: parse.go
// Role: Reader for the gr1c edge-change format.
//
//	# neighborhood, one state per line
//	0 0
//	0 1
//	# commands
//	restrict 0 0 0 1
//	relax 0 1 1 1
//	blocksys 1
//
// State lines come first. A restrict or relax command carries either
// 2·(numEnv+numSys) values (a controlled edge) or 2·numEnv+numSys values
// (an uncontrolled edge: source state then environment part). blocksys
// carries numSys values. Blank lines and lines starting with '#' are
// skipped.
package patch

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/gr1synth/automaton"
)

// ParseChanges reads a neighborhood and a list of changes.
//
// Errors: ErrPatchInput with the offending line number.
func ParseChanges(r io.Reader, numEnv, numSys int) ([]automaton.State, []Change, error) {
	width := numEnv + numSys
	var (
		n       []automaton.State
		changes []Change
		lineNo  int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "restrict", "relax":
			vals, err := bits(fields[1:])
			if err != nil {
				return nil, nil, fmt.Errorf("%w: line %d: %v", ErrPatchInput, lineNo, err)
			}
			kind := Restrict
			if fields[0] == "relax" {
				kind = Relax
			}
			c, err := edgeChange(kind, vals, numEnv, numSys)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			changes = append(changes, c)
		case "blocksys":
			vals, err := bits(fields[1:])
			if err != nil {
				return nil, nil, fmt.Errorf("%w: line %d: %v", ErrPatchInput, lineNo, err)
			}
			if len(vals) != numSys {
				return nil, nil, fmt.Errorf("%w: line %d: blocksys wants %d values, got %d",
					ErrPatchInput, lineNo, numSys, len(vals))
			}
			changes = append(changes, Change{Kind: BlockSys, To: vals})
		default:
			if len(changes) > 0 {
				return nil, nil, fmt.Errorf("%w: line %d: unrecognized command %q", ErrPatchInput, lineNo, fields[0])
			}
			vals, err := bits(fields)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: line %d: %v", ErrPatchInput, lineNo, err)
			}
			if len(vals) != width {
				return nil, nil, fmt.Errorf("%w: line %d: state wants %d values, got %d",
					ErrPatchInput, lineNo, width, len(vals))
			}
			n = append(n, vals)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	if len(n) == 0 {
		return nil, nil, fmt.Errorf("%w: empty neighborhood", ErrPatchInput)
	}
	return n, changes, nil
}

// edgeChange classifies a restrict/relax vector by its length.
func edgeChange(kind Kind, vals automaton.State, numEnv, numSys int) (Change, error) {
	width := numEnv + numSys
	switch len(vals) {
	case 2 * width:
		return Change{Kind: kind, Controlled: true, From: vals[:width], To: vals[width:]}, nil
	case 2*numEnv + numSys:
		return Change{Kind: kind, From: vals[:width], To: vals[width:]}, nil
	default:
		return Change{}, fmt.Errorf("%w: %s wants %d or %d values, got %d",
			ErrPatchInput, kind, 2*width, 2*numEnv+numSys, len(vals))
	}
}

func bits(fields []string) (automaton.State, error) {
	out := make(automaton.State, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil || (v != 0 && v != 1) {
			return nil, fmt.Errorf("value %q is not 0 or 1", f)
		}
		out[i] = v == 1
	}
	return out, nil
}
