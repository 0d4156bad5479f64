package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/spec"
)

// Output formats accepted by --format.
const (
	formatGR1C  = "gr1c"
	formatGR1C0 = "gr1c0"
	formatJSON  = "json"
	formatDOT   = "dot"
)

func checkFormat(f string) error {
	switch f {
	case formatGR1C, formatGR1C0, formatJSON, formatDOT:
		return nil
	}
	return fmt.Errorf("%w: --format %q (want gr1c, gr1c0, json or dot)", errFlag, f)
}

// varNames splits the variable names of s into environment and system
// parts, in state order.
func varNames(s *spec.Spec) (env, sys []string) {
	m := s.Manager()
	for i := range m.Width() {
		if i < m.NumEnv() {
			env = append(env, m.VarName(i))
		} else {
			sys = append(sys, m.VarName(i))
		}
	}
	return env, sys
}

// readStrategy loads a gr1c automaton, or a JSON one when path ends in
// .json.
func readStrategy(path string, s *spec.Spec) (*automaton.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		store, _, _, err := automaton.ReadJSON(bufio.NewReader(f))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if store.Width() != s.Manager().Width() {
			return nil, fmt.Errorf("%s: %w: %d values per state, spec has %d",
				path, automaton.ErrStateWidth, store.Width(), s.Manager().Width())
		}
		return store, nil
	}
	store, _, err := automaton.ReadGR1C(bufio.NewReader(f), s.Manager().Width())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

func encodeStrategy(w io.Writer, format string, store *automaton.Store, s *spec.Spec) error {
	env, sys := varNames(s)
	switch format {
	case formatGR1C:
		return automaton.WriteGR1C(w, store, automaton.GR1CVersion1)
	case formatGR1C0:
		return automaton.WriteGR1C(w, store, automaton.GR1CVersion0)
	case formatJSON:
		return automaton.WriteJSON(w, store, env, sys)
	case formatDOT:
		return automaton.WriteDOT(w, store, env, sys)
	}
	return checkFormat(format)
}

// writeStrategy encodes store to path, or to the command output when path
// is empty or "-".
func (a *app) writeStrategy(path, format string, store *automaton.Store, s *spec.Spec) error {
	if path == "" || path == "-" {
		return encodeStrategy(a.out, format, store, s)
	}
	var buf bytes.Buffer
	if err := encodeStrategy(&buf, format, store, s); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func writeDocument(path string, doc *spec.Document) error {
	raw, err := doc.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// lineDiff prints a line-oriented diff of two gr1c dumps.
func lineDiff(w io.Writer, before, after string) {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	add := color.New(color.FgGreen).SprintFunc()
	del := color.New(color.FgRed).SprintFunc()
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			switch d.Type {
			case diffpatch.DiffInsert:
				fmt.Fprint(w, add("+ "+line))
			case diffpatch.DiffDelete:
				fmt.Fprint(w, del("- "+line))
			default:
				fmt.Fprint(w, "  "+line)
			}
		}
	}
}
