package shim

import (
	_ "embed"
)

// Hand-assembled WASI modules with fixed behavior, so tests cover exact
// executor paths without a real interpreter build.
// Rebuild with: go run ./internal/tools/mockwasm shim/testdata

//go:embed testdata/noop.wasm
var noopWasm []byte

//go:embed testdata/exit3.wasm
var exit3Wasm []byte

//go:embed testdata/loop.wasm
var loopWasm []byte

//go:embed testdata/grow.wasm
var growWasm []byte

//go:embed testdata/hello.wasm
var helloWasm []byte

//go:embed testdata/cat.wasm
var catWasm []byte

// mockEngine implements Engine over a fixed module. The entry statement is
// ignored; the module's behavior is baked in.
type mockEngine struct {
	name   string
	module []byte
}

func (m *mockEngine) Name() string {
	return m.name
}

func (m *mockEngine) Module() []byte {
	return m.module
}

func (m *mockEngine) Args(source string) []string {
	return []string{m.name}
}

func (m *mockEngine) Require(path string) string {
	return path
}

func newMockEngine(name string, module []byte) *mockEngine {
	return &mockEngine{name: name, module: module}
}
