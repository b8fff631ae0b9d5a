package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gantrylabs/gantry/bridge"
	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call [request]",
	Short: "Send one request to the payload service",
	Long: `Boot the payload service, send a single length-prefixed JSON request,
print the response, and shut the service down.

The request body comes from the argument or from stdin:
  gantry call '{"op":"ping"}'
  echo '{"op":"eval","src":"6*7"}' | gantry call`,
	Args: cobra.MaximumNArgs(1),
	Run:  runCall,
}

func init() {
	callCmd.Flags().Duration("timeout", 60*time.Second, "Response timeout")
	rootCmd.AddCommand(callCmd)
}

func runCall(cmd *cobra.Command, args []string) {
	timeout, _ := cmd.Flags().GetDuration("timeout")

	var request []byte
	if len(args) > 0 {
		request = []byte(args[0])
	} else {
		// Check if stdin has data (pipe or redirect).
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			cmd.Help()
			return
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
		request = bytes.TrimSpace(data)
		if len(request) == 0 {
			cmd.Help()
			return
		}
	}

	b, err := bridge.New(shimOptions(cmd)...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer b.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := bridge.NewClient(b).Call(ctx, request)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(resp))
}
