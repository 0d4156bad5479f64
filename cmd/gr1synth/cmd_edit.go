package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/hotswap"
	"github.com/katalvlaran/gr1synth/patch"
	"github.com/katalvlaran/gr1synth/spec"
)

// editFlags are shared by the commands that rewrite a strategy.
type editFlags struct {
	out    string
	format string
	diff   bool
}

func (e *editFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&e.out, "output", "o", "", "output file (default stdout)")
	f.StringVarP(&e.format, "format", "f", formatGR1C, "output format: gr1c, gr1c0, json, dot")
	f.BoolVar(&e.diff, "diff", false, "print a gr1c line diff of the edit to stderr")
}

// emit writes the edited strategy and, with --diff, the change against
// the input.
func (a *app) emit(e *editFlags, before, after *automaton.Store, s *spec.Spec) error {
	if e.diff {
		var x, y bytes.Buffer
		if err := automaton.WriteGR1C(&x, before, automaton.GR1CVersion1); err != nil {
			return err
		}
		if err := automaton.WriteGR1C(&y, after, automaton.GR1CVersion1); err != nil {
			return err
		}
		lineDiff(a.errOut, x.String(), y.String())
	}
	return a.writeStrategy(e.out, e.format, after, s)
}

func newPatchCmd(a *app) *cobra.Command {
	var e editFlags
	cmd := &cobra.Command{
		Use:   "patch SPEC STRATEGY CHANGES",
		Short: "Repair a strategy after transition changes",
		Long: `patch reads a neighborhood and edge changes from CHANGES (restrict, relax
and blocksys commands, one state or command per line) and repairs
STRATEGY by solving local games inside the neighborhood only.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(e.format); err != nil {
				return err
			}
			s, _, err := spec.LoadFile(args[0])
			if err != nil {
				return err
			}
			store, err := readStrategy(args[1], s)
			if err != nil {
				return err
			}
			f, err := os.Open(args[2])
			if err != nil {
				return err
			}
			n, changes, err := patch.ParseChanges(f, s.NumEnv(), s.NumSys())
			f.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", args[2], err)
			}
			res, err := patch.Patch(s, store, n, changes,
				patch.WithContext(cmd.Context()), patch.WithLogger(a.log))
			if err != nil {
				return err
			}
			a.log.Info("patched", slog.Any("modes", res.Modes), slog.Int("nodes", res.Store.Len()))
			return a.emit(&e, store, res.Store, res.Spec)
		},
	}
	e.register(cmd)
	return cmd
}

func newAddGoalCmd(a *app) *cobra.Command {
	var (
		e       editFlags
		metric  []string
		specOut string
	)
	cmd := &cobra.Command{
		Use:   "addgoal SPEC STRATEGY FORMULA",
		Short: "Insert a system goal into a strategy without re-solving",
		Long: `addgoal adds FORMULA as a new system goal. With --metric the goal is placed
after the existing goal nearest to it, measuring distances over the named
variable groups read as unsigned integers; otherwise it is appended.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(e.format); err != nil {
				return err
			}
			s, doc, err := spec.LoadFile(args[0])
			if err != nil {
				return err
			}
			store, err := readStrategy(args[1], s)
			if err != nil {
				return err
			}
			goal, err := spec.Compile(s.Manager(), args[2], spec.ScopeState)
			if err != nil {
				return err
			}
			opts := []hotswap.Option{hotswap.WithContext(cmd.Context()), hotswap.WithLogger(a.log)}
			if len(metric) > 0 {
				mt, err := hotswap.NewMetric(s.Manager(), metric...)
				if err != nil {
					return err
				}
				opts = append(opts, hotswap.WithMetric(mt))
			}
			res, err := hotswap.AddSysGoal(s, store, goal, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.errOut, "goal inserted at index %d\n", res.Index)
			if specOut != "" {
				nd, err := doc.InsertSysGoal(res.Index, args[2])
				if err != nil {
					return err
				}
				if err := writeDocument(specOut, nd); err != nil {
					return err
				}
			}
			return a.emit(&e, store, res.Store, res.Spec)
		},
	}
	e.register(cmd)
	cmd.Flags().StringSliceVar(&metric, "metric", nil, "variable name prefixes of the distance metric")
	cmd.Flags().StringVar(&specOut, "spec-out", "", "write the specification with the new goal here")
	return cmd
}

func newRmGoalCmd(a *app) *cobra.Command {
	var (
		e       editFlags
		specOut string
	)
	cmd := &cobra.Command{
		Use:   "rmgoal SPEC STRATEGY INDEX",
		Short: "Remove a system goal from a strategy without re-solving",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(e.format); err != nil {
				return err
			}
			idx, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("goal index %q: %w", args[2], err)
			}
			s, doc, err := spec.LoadFile(args[0])
			if err != nil {
				return err
			}
			store, err := readStrategy(args[1], s)
			if err != nil {
				return err
			}
			res, err := hotswap.RemoveSysGoal(s, store, idx,
				hotswap.WithContext(cmd.Context()), hotswap.WithLogger(a.log))
			if err != nil {
				return err
			}
			if specOut != "" {
				nd, err := doc.RemoveSysGoal(idx)
				if err != nil {
					return err
				}
				if err := writeDocument(specOut, nd); err != nil {
					return err
				}
			}
			return a.emit(&e, store, res.Store, res.Spec)
		},
	}
	e.register(cmd)
	cmd.Flags().StringVar(&specOut, "spec-out", "", "write the specification without the goal here")
	return cmd
}
