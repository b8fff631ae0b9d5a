// Package quickjs adapts the QuickJS WASI build as a gantry engine.
package quickjs

import (
	"strconv"

	quickjswasi "github.com/paralin/go-quickjs-wasi"
)

// StackLimit is the interpreter stack quota in bytes. The engine enforces
// it internally; the runtime's page limit only covers the heap.
const StackLimit = 64 << 20

// QuickJS implements the shim.Engine interface for JavaScript execution.
type QuickJS struct{}

// New returns a QuickJS engine adapter.
func New() *QuickJS {
	return &QuickJS{}
}

// Name returns "quickjs".
func (q *QuickJS) Name() string {
	return "quickjs"
}

// Module returns the QuickJS WASM binary.
func (q *QuickJS) Module() []byte {
	return quickjswasi.QuickJSWASM
}

// Args returns the command-line arguments that evaluate source with the
// std module loaded and the stack quota applied.
func (q *QuickJS) Args(source string) []string {
	return []string{"qjs", "--std", "--stack-size", strconv.Itoa(StackLimit), "-e", source}
}

// Require returns the one-statement program that loads and runs the script
// at path.
func (q *QuickJS) Require(path string) string {
	return "std.loadScript(" + strconv.Quote(path) + ");"
}
