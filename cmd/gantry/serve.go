package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gantrylabs/gantry/bridge"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the payload service over HTTP",
	Long: `Start an HTTP server that forwards requests to the persistent payload
service. The service keeps one global scope, shared by all callers.

Endpoints:
  POST /call     Forward a raw request body, returns the service response
  POST /eval     {"src":"..."} evaluated in the service's global scope
  GET  /health   Health check`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Duration("timeout", 60*time.Second, "Per-request timeout")
	rootCmd.AddCommand(serveCmd)
}

// Request bodies are service-bound JSON; cap them well below the guest heap.
const maxRequestBody = 1 << 20

type evalRequest struct {
	Src string `json:"src"`
}

// handleCall forwards the raw request body to the service unmodified.
func handleCall(client *bridge.Client, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		if len(body) == 0 {
			http.Error(w, "request body required", http.StatusBadRequest)
			return
		}

		forward(w, r, client, timeout, body)
	}
}

// handleEval wraps a source snippet in an eval request before forwarding.
func handleEval(client *bridge.Client, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req evalRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Src == "" {
			http.Error(w, "src required", http.StatusBadRequest)
			return
		}

		payload, err := json.Marshal(map[string]string{"op": "eval", "src": req.Src})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		forward(w, r, client, timeout, payload)
	}
}

func forward(w http.ResponseWriter, r *http.Request, client *bridge.Client, timeout time.Duration, payload []byte) {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	resp, err := client.Call(ctx, payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(resp)
}

func runServe(cmd *cobra.Command, args []string) {
	port, _ := cmd.Flags().GetInt("port")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	b, err := bridge.New(shimOptions(cmd)...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer b.Stop()

	client := bridge.NewClient(b)

	http.HandleFunc("/call", handleCall(client, timeout))
	http.HandleFunc("/eval", handleEval(client, timeout))
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf(":%d", port)
	fmt.Fprintf(os.Stderr, "gantry server listening on %s\n", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
