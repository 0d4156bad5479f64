package main

import (
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/gr1synth/automaton"
	"github.com/katalvlaran/gr1synth/solve"
	"github.com/katalvlaran/gr1synth/spec"
	"github.com/katalvlaran/gr1synth/strategydb"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		jobs  int
		count bool
	)
	cmd := &cobra.Command{
		Use:   "check SPEC...",
		Short: "Decide realizability of one or more specifications",
		Long: `check solves every SPEC and prints one verdict per file. The files are
solved concurrently, --jobs at a time. With --count the size of each
winning set is printed too. The exit status is 2 when any specification
is unrealizable.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jobs < 1 {
				return fmt.Errorf("%w: --jobs must be positive, got %d", errFlag, jobs)
			}
			verdicts := make([]bool, len(args))
			sizes := make([]*big.Int, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(jobs)
			for i, path := range args {
				g.Go(func() error {
					s, _, err := spec.LoadFile(path)
					if err != nil {
						return err
					}
					ok, w, err := solve.Realizable(s,
						solve.WithContext(ctx),
						solve.WithLogger(a.log.With(slog.String("spec", path))))
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					verdicts[i] = ok
					if count {
						sizes[i], err = s.Manager().CountStates(w)
					}
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			all := true
			for i, path := range args {
				verdict := a.good("realizable")
				if !verdicts[i] {
					verdict = a.bad("unrealizable")
					all = false
				}
				if sizes[i] != nil {
					fmt.Fprintf(a.out, "%s: %s (%s winning states)\n", path, verdict, sizes[i])
				} else {
					fmt.Fprintf(a.out, "%s: %s\n", path, verdict)
				}
			}
			if !all {
				return errUnrealizable
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "specifications solved at once")
	cmd.Flags().BoolVar(&count, "count", false, "print the number of winning states")
	return cmd
}

func newSynthCmd(a *app) *cobra.Command {
	var out, format, dbPath string
	cmd := &cobra.Command{
		Use:   "synth SPEC",
		Short: "Synthesize a winning strategy automaton",
		Long: `synth solves SPEC and writes the extracted strategy. With --db the
strategy is also stored under the digest of SPEC for later use by
"store get".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			s, doc, err := spec.LoadFile(args[0])
			if err != nil {
				return err
			}
			res, err := solve.Synthesize(s, solve.WithContext(cmd.Context()), solve.WithLogger(a.log))
			if err != nil {
				return err
			}
			if !res.Realizable {
				fmt.Fprintf(a.errOut, "%s: %s\n", args[0], a.bad("unrealizable"))
				return errUnrealizable
			}
			if dbPath != "" {
				digest, err := doc.Digest()
				if err != nil {
					return err
				}
				db, err := strategydb.Open(strategydb.Config{Path: dbPath, SyncWrites: true, Logger: a.log})
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.Put(cmd.Context(), digest, res.Strategy); err != nil {
					return err
				}
				a.log.Info("strategy stored", slog.String("digest", digest), slog.Int("nodes", res.Strategy.Len()))
			}
			return a.writeStrategy(out, format, res.Strategy, s)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "output", "o", "", "output file (default stdout)")
	f.StringVarP(&format, "format", "f", formatGR1C, "output format: gr1c, gr1c0, json, dot")
	f.StringVar(&dbPath, "db", "", "also store the strategy in this database directory")
	return cmd
}

func joinIDs(ids []automaton.NodeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, " -> ")
}

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify SPEC STRATEGY",
		Short: "Check a strategy automaton against a specification",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := spec.LoadFile(args[0])
			if err != nil {
				return err
			}
			store, err := readStrategy(args[1], s)
			if err != nil {
				return err
			}
			rep, err := solve.Verify(s, store, solve.WithContext(cmd.Context()), solve.WithLogger(a.log))
			if err != nil {
				return err
			}
			if rep.OK() {
				fmt.Fprintf(a.out, "%d nodes checked: %s\n", rep.Checked, a.good("ok"))
				return nil
			}
			for _, v := range rep.Violations {
				fmt.Fprintln(a.out, v)
				if len(v.Path) > 1 {
					fmt.Fprintf(a.out, "  via %s\n", joinIDs(v.Path))
				}
			}
			fmt.Fprintf(a.out, "%d nodes checked: %s\n", rep.Checked, a.bad("%d violations", len(rep.Violations)))
			return errVerifyFailed
		},
	}
}
