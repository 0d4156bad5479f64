package automaton

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"
)

// JSONFormatVersion is the gr1c JSON automaton format version written.
const JSONFormatVersion = 1

// jsonDoc mirrors the gr1c JSON automaton layout. Node keys are decimal
// positions in Nodes() order.
type jsonDoc struct {
	Version int                     `json:"version"`
	Tool    string                  `json:"gr1c"`
	Date    string                  `json:"date"`
	Extra   string                  `json:"extra"`
	Env     []map[string]string     `json:"ENV"`
	Sys     []map[string]string     `json:"SYS"`
	Nodes   map[string]jsonNodeBody `json:"nodes"`
}

type jsonNodeBody struct {
	State   []int    `json:"state"`
	Mode    int      `json:"mode"`
	Rank    int      `json:"rgrad"`
	Initial bool     `json:"initial"`
	Trans   []string `json:"trans"`
}

// Tool is the producer string written into JSON dumps.
const Tool = "gr1synth"

// WriteJSON writes s as a gr1c JSON automaton. envVars and sysVars name the
// state positions and must together cover the store width.
func WriteJSON(w io.Writer, s *Store, envVars, sysVars []string) error {
	if len(envVars)+len(sysVars) != s.width {
		return fmt.Errorf("%w: %d names for width %d", ErrStateWidth, len(envVars)+len(sysVars), s.width)
	}
	pos := positions(s)
	doc := jsonDoc{
		Version: JSONFormatVersion,
		Tool:    Tool,
		Date:    time.Now().UTC().Format(time.DateTime),
		Env:     varDecls(envVars),
		Sys:     varDecls(sysVars),
		Nodes:   make(map[string]jsonNodeBody, s.live),
	}
	for i, n := range s.Nodes() {
		body := jsonNodeBody{
			State:   make([]int, len(n.State)),
			Mode:    n.Mode,
			Rank:    n.Rank,
			Initial: n.Initial,
			Trans:   make([]string, 0, len(n.Trans)),
		}
		for k, v := range n.State {
			body.State[k] = boolInt(v)
		}
		for _, t := range n.Trans {
			body.Trans = append(body.Trans, strconv.Itoa(pos[t]))
		}
		doc.Nodes[strconv.Itoa(i)] = body
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func varDecls(names []string) []map[string]string {
	out := make([]map[string]string, 0, len(names))
	for _, n := range names {
		out = append(out, map[string]string{n: "boolean"})
	}
	return out
}

// ReadJSON parses a gr1c JSON automaton. Node keys may be any strings;
// nodes are inserted in key order (numeric keys numerically) and the
// variable names are returned alongside the store.
func ReadJSON(r io.Reader) (*Store, []string, []string, error) {
	var doc jsonDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if doc.Version != JSONFormatVersion {
		return nil, nil, nil, fmt.Errorf("%w: json version %d", ErrVersion, doc.Version)
	}
	envVars, err := declNames(doc.Env)
	if err != nil {
		return nil, nil, nil, err
	}
	sysVars, err := declNames(doc.Sys)
	if err != nil {
		return nil, nil, nil, err
	}
	width := len(envVars) + len(sysVars)

	keys := make([]string, 0, len(doc.Nodes))
	for k := range doc.Nodes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })

	s := NewStore(width)
	ids := make(map[string]NodeID, len(keys))
	for _, k := range keys {
		body := doc.Nodes[k]
		if len(body.State) != width {
			return nil, nil, nil, fmt.Errorf("%w: node %s", ErrStateWidth, k)
		}
		st := make(State, width)
		for i, v := range body.State {
			st[i] = v != 0
		}
		id, err := s.Insert(body.Mode, body.Rank, body.Initial, st)
		if err != nil {
			return nil, nil, nil, err
		}
		ids[k] = id
	}
	for _, k := range keys {
		for _, t := range doc.Nodes[k].Trans {
			to, ok := ids[t]
			if !ok {
				return nil, nil, nil, fmt.Errorf("%w: node %s: edge to unknown %q", ErrFormat, k, t)
			}
			if err := s.AddEdge(ids[k], to); err != nil {
				return nil, nil, nil, err
			}
		}
	}
	return s, envVars, sysVars, nil
}

func declNames(decls []map[string]string) ([]string, error) {
	out := make([]string, 0, len(decls))
	for _, d := range decls {
		if len(d) != 1 {
			return nil, fmt.Errorf("%w: variable declaration %v", ErrFormat, d)
		}
		for name, typ := range d {
			if typ != "boolean" {
				return nil, fmt.Errorf("%w: variable %q has non-boolean domain", ErrFormat, name)
			}
			out = append(out, name)
		}
	}
	return out, nil
}

func lessKey(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	}
	return a < b
}
