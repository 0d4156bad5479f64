package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var (
	errUnrealizable = errors.New("specification is unrealizable")
	errVerifyFailed = errors.New("strategy failed verification")
	errFlag         = errors.New("invalid flag value")
)

// app carries the state shared by every subcommand.
type app struct {
	out    io.Writer
	errOut io.Writer
	log    *slog.Logger

	logFormat   string
	logLevel    string
	colorMode   string
	metricsAddr string

	metrics *http.Server
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, log: slog.New(slog.DiscardHandler)}

	root := &cobra.Command{
		Use:   "gr1synth",
		Short: "GR(1) synthesis with local strategy patching",
		Long: `gr1synth decides realizability of GR(1) specifications written in YAML,
extracts winning strategies as gr1c automata, and edits those strategies in
place: patching after transition changes, adding or removing system goals.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  func(*cobra.Command, []string) error { return a.setup() },
		PersistentPostRunE: func(*cobra.Command, []string) error { return a.teardown() },
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.logFormat, "log-format", "text", "log format: text or json")
	pf.StringVar(&a.logLevel, "log-level", "warn", "minimum log level: debug, info, warn, error")
	pf.StringVar(&a.colorMode, "color", "auto", "colored verdicts: auto, always, never")
	pf.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")

	root.AddCommand(
		newCheckCmd(a),
		newSynthCmd(a),
		newVerifyCmd(a),
		newPatchCmd(a),
		newAddGoalCmd(a),
		newRmGoalCmd(a),
		newConvertCmd(a),
		newStoreCmd(a),
	)
	return root
}

func (a *app) setup() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("%w: --log-level %q", errFlag, a.logLevel)
	}
	hopts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(a.logFormat) {
	case "text":
		a.log = slog.New(slog.NewTextHandler(a.errOut, hopts))
	case "json":
		a.log = slog.New(slog.NewJSONHandler(a.errOut, hopts))
	default:
		return fmt.Errorf("%w: --log-format %q", errFlag, a.logFormat)
	}

	switch a.colorMode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(a.out)
	default:
		return fmt.Errorf("%w: --color %q", errFlag, a.colorMode)
	}

	if a.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		a.metrics = &http.Server{Addr: a.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("metrics server stopped", slog.String("addr", a.metricsAddr), slog.Any("error", err))
			}
		}()
		a.log.Info("serving metrics", slog.String("addr", a.metricsAddr))
	}
	return nil
}

func (a *app) teardown() error {
	if a.metrics == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return a.metrics.Shutdown(ctx)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (a *app) good(format string, args ...any) string {
	return color.New(color.FgGreen, color.Bold).Sprintf(format, args...)
}

func (a *app) bad(format string, args ...any) string {
	return color.New(color.FgRed, color.Bold).Sprintf(format, args...)
}
