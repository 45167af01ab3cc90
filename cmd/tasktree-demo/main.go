// Command tasktree-demo runs a small tree of named subsystems to
// exercise the package from the command line: one ticking worker per
// --workers flag, a timeout, and signal-triggered shutdown.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	tt "github.com/tasktree-go/tasktree"
)

// root returns the root cobra command.
func root() (cmd *cobra.Command) {
	var workers int
	var timeout time.Duration
	var shutdownTimeout time.Duration

	cmd = &cobra.Command{
		Use:           "tasktree-demo",
		Short:         "Runs a small demo subsystem tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(workers, timeout, shutdownTimeout)
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 3, "number of ticking worker subsystems to start")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 5*time.Second, "stop the whole tree after this long")
	cmd.Flags().DurationVarP(&shutdownTimeout, "shutdown-timeout", "s", 3*time.Second, "max time to wait for a clean drain before reporting a timeout")
	return
}

func runDemo(workers int, timeout, shutdownTimeout time.Duration) error {
	toplevel := tt.New(func(ctx context.Context, h *tt.SubsystemHandle) error {
		for i := 0; i < workers; i++ {
			h.Start(tt.NewSubsystem(fmt.Sprintf("worker-%d", i), tickingWorker))
		}
		h.WaitForChildren(ctx)
		return nil
	})
	toplevel.CatchSignals()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := toplevel.HandleShutdownRequests(ctx, shutdownTimeout)
	if err != nil {
		var gse *tt.GracefulShutdownError
		if tt.As(err, &gse) {
			for _, line := range tt.FormatExitStates(exitStatesOf(gse)) {
				fmt.Fprintln(os.Stderr, line)
			}
		}
		return err
	}
	return nil
}

func exitStatesOf(gse *tt.GracefulShutdownError) []tt.ExitState {
	out := make([]tt.ExitState, len(gse.Errors))
	for i, e := range gse.Errors {
		out[i] = tt.ExitState{Name: e.Name, ExitState: e.Kind.String(), Err: e}
	}
	return out
}

// tickingWorker prints a tick every second until shutdown is requested.
func tickingWorker(ctx context.Context, h *tt.SubsystemHandle) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fmt.Printf("tick from %s\n", tt.ContextName(ctx))
		case <-h.OnShutdownRequestedChan():
			fmt.Printf("%s shutting down\n", tt.ContextName(ctx))
			return nil
		}
	}
}

func main() {
	if err := root().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", os.Args[0], err.Error())
		os.Exit(1)
	}
}
