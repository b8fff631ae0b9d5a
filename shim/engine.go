package shim

// Engine defines the interface for embeddable interpreter builds.
type Engine interface {
	// Name returns a unique identifier (used in errors and caching).
	Name() string

	// Module returns the WASM binary for this interpreter.
	Module() []byte

	// Args returns the command-line arguments that make the interpreter
	// evaluate the given source.
	Args(source string) []string

	// Require returns the one-statement program that loads and runs the
	// script at the given guest path.
	Require(path string) string
}
