package main

import (
	"os"
	"strings"

	"github.com/gantrylabs/gantry/shim"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gantry",
	Short: "Run the bundled application inside an embedded QuickJS interpreter",
	Long: `gantry - Boot a bundled application archive inside an embedded QuickJS
interpreter, proxying this process's standard streams into the guest.

The application archive is compiled into the binary and mounted read-only
in the guest's virtual filesystem. 'run' executes its entry script once;
'call', 'repl' and 'serve' talk to the persistent payload service over a
length-prefixed request protocol.`,
	Args: cobra.NoArgs,
	Run:  runRun, // Default to run command behavior
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("memory", "1gb", "Guest heap limit: 16mb, 64mb, 256mb, 1gb")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Disable the on-disk compilation cache")
	rootCmd.PersistentFlags().Bool("inline", false, "Run the guest on the calling thread instead of a worker")

	addRunFlags(rootCmd)
}

// parseMemoryLimit maps a human flag value onto a page count.
// Returns 0 for unrecognized values, which means "use the default".
func parseMemoryLimit(s string) uint32 {
	switch strings.ToLower(s) {
	case "16mb":
		return shim.MemoryLimit16MB
	case "64mb":
		return shim.MemoryLimit64MB
	case "256mb":
		return shim.MemoryLimit256MB
	case "1gb":
		return shim.MemoryLimit1GB
	default:
		return 0
	}
}

// shimOptions translates the shared flags into shim options.
func shimOptions(cmd *cobra.Command) []shim.Option {
	memory, _ := cmd.Flags().GetString("memory")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	inline, _ := cmd.Flags().GetBool("inline")

	var opts []shim.Option
	if pages := parseMemoryLimit(memory); pages > 0 {
		opts = append(opts, shim.WithMemoryLimit(pages))
	}
	if !noCache {
		opts = append(opts, shim.WithDiskCache())
	}
	if inline {
		opts = append(opts, shim.WithInlineExecution())
	}
	return opts
}
