// Command gr1synth solves GR(1) specifications and edits the resulting
// strategy automata: local patching after edge changes, system goal
// insertion and removal, verification and format conversion.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gr1synth: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit status: 2 for a
// negative verdict, 1 for everything else.
func exitCode(err error) int {
	if errors.Is(err, errUnrealizable) || errors.Is(err, errVerifyFailed) {
		return 2
	}
	return 1
}
