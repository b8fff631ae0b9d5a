package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gantrylabs/gantry/shim"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bundled entry script to completion",
	Long: `Execute the bundled archive's entry script, proxying this process's
standard input and output into the guest. Blocks until the guest finishes.

Guest output goes wherever this process's stdout points; failures are
reported on stderr and through the exit status.

Examples:
  gantry run
  echo '{"op":"ping"}' | gantry run
  gantry run --memory 64mb --timeout 30s`,
	Args: cobra.NoArgs,
	Run:  runRun,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

// addRunFlags registers the flags shared by the root command and 'run'.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("timeout", 0, "Abort the entry script after this long (0 = no limit)")
}

func runRun(cmd *cobra.Command, args []string) {
	timeout, _ := cmd.Flags().GetDuration("timeout")

	s, err := shim.New(os.Stdin.Fd(), os.Stdout.Fd(), shimOptions(cmd)...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	task, err := s.Start(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := task.Wait(context.Background()); err != nil {
		// The shim already wrote the failure line to the error stream.
		s.Close()
		os.Exit(1)
	}
}
