package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/gantrylabs/gantry/bridge"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive session with the payload service",
	Long: `Start an interactive session against the persistent payload service.

Input lines are evaluated in the service's global scope, so state carries
over between lines. Lines starting with '{' are sent verbatim as raw
requests instead.

Features:
  - Command history (up/down arrows)
  - Line editing (left/right arrows, backspace)
  - History search (Ctrl+R)

Type 'exit' or 'quit' to end the session, or press Ctrl+D.`,
	Args: cobra.NoArgs,
	Run:  runRepl,
}

func init() {
	replCmd.Flags().String("history", "", "History file path (default: ~/.gantry_history)")
	replCmd.Flags().Duration("timeout", 60*time.Second, "Per-request timeout")
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) {
	historyFile, _ := cmd.Flags().GetString("history")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	if historyFile == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			historyFile = filepath.Join(home, ".gantry_history")
		}
	}

	b, err := bridge.New(shimOptions(cmd)...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer b.Stop()

	client := bridge.NewClient(b)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "js> ",
		HistoryFile:       historyFile,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Println("gantry payload REPL (type 'exit' to quit, Ctrl+D to exit)")

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				fmt.Println()
				break
			}
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		request := []byte(line)
		if !strings.HasPrefix(line, "{") {
			request, err = json.Marshal(map[string]string{"op": "eval", "src": line})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		resp, err := client.Call(ctx, request)
		cancel()
		if err != nil {
			// The framing is request/response; once a call fails the
			// stream can no longer be trusted, so end the session.
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		printResponse(resp)
	}
}

// printResponse renders a service response: eval results get unwrapped,
// anything unrecognized prints as raw JSON.
func printResponse(resp []byte) {
	var out struct {
		Ok    bool            `json:"ok"`
		Value json.RawMessage `json:"value"`
		Error string          `json:"error"`
	}
	if err := json.Unmarshal(resp, &out); err != nil {
		fmt.Println(string(resp))
		return
	}
	if !out.Ok && out.Error != "" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", out.Error)
		return
	}
	if len(out.Value) > 0 {
		fmt.Println(string(out.Value))
		return
	}
	fmt.Println(string(resp))
}
