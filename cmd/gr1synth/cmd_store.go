package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/gr1synth/bfs"
	"github.com/katalvlaran/gr1synth/spec"
	"github.com/katalvlaran/gr1synth/strategydb"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		out, format string
		trim        bool
	)
	cmd := &cobra.Command{
		Use:   "convert SPEC STRATEGY",
		Short: "Re-encode a strategy as gr1c, JSON or DOT",
		Long: `convert reads STRATEGY (gr1c, or JSON when the file ends in .json) and
writes it in --format, naming variables after SPEC. With --trim nodes
unreachable from an initial node are dropped first.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
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
			if trim {
				n, err := bfs.TrimUnreachable(store, bfs.WithContext(cmd.Context()))
				if err != nil {
					return err
				}
				a.log.Info("trimmed unreachable nodes", slog.Int("deleted", n))
			}
			return a.writeStrategy(out, format, store, s)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "output", "o", "", "output file (default stdout)")
	f.StringVarP(&format, "format", "f", formatJSON, "output format: gr1c, gr1c0, json, dot")
	f.BoolVar(&trim, "trim", false, "drop nodes unreachable from an initial node")
	return cmd
}

func newStoreCmd(a *app) *cobra.Command {
	var dbPath string
	open := func() (*strategydb.DB, error) {
		if dbPath == "" {
			return nil, fmt.Errorf("%w: --db is required", errFlag)
		}
		return strategydb.Open(strategydb.Config{Path: dbPath, SyncWrites: true, Logger: a.log})
	}
	digestOf := func(path string) (*spec.Spec, string, error) {
		s, doc, err := spec.LoadFile(path)
		if err != nil {
			return nil, "", err
		}
		d, err := doc.Digest()
		return s, d, err
	}

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep strategies in a local database keyed by specification digest",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "database directory")

	put := &cobra.Command{
		Use:   "put SPEC STRATEGY",
		Short: "Store a strategy under the digest of SPEC",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, digest, err := digestOf(args[0])
			if err != nil {
				return err
			}
			store, err := readStrategy(args[1], s)
			if err != nil {
				return err
			}
			db, err := open()
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Put(cmd.Context(), digest, store); err != nil {
				return err
			}
			fmt.Fprintln(a.out, digest)
			return nil
		},
	}

	var out, format string
	get := &cobra.Command{
		Use:   "get SPEC",
		Short: "Write the strategy stored for SPEC",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			s, digest, err := digestOf(args[0])
			if err != nil {
				return err
			}
			db, err := open()
			if err != nil {
				return err
			}
			defer db.Close()
			store, _, err := db.Get(cmd.Context(), digest)
			if err != nil {
				return err
			}
			return a.writeStrategy(out, format, store, s)
		},
	}
	get.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	get.Flags().StringVarP(&format, "format", "f", formatGR1C, "output format: gr1c, gr1c0, json, dot")

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored strategies",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			defer db.Close()
			entries, err := db.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DIGEST\tWIDTH\tNODES\tSTORED")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", e.Digest, e.Width, e.Nodes, e.Stored.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}

	del := &cobra.Command{
		Use:     "delete DIGEST",
		Aliases: []string{"rm"},
		Short:   "Delete a stored strategy",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			defer db.Close()
			return db.Delete(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(put, get, list, del)
	return cmd
}
