package shim

import (
	"os"
	"path/filepath"
)

// TestCache returns an option pointing the shim at a compilation cache
// directory shared by all test processes. Compiling the engine module
// takes over a second; the shared cache pays that once per machine
// instead of once per test.
//
// Degrades to a no-op when the directory cannot be created.
func TestCache() Option {
	dir := filepath.Join(os.TempDir(), "gantry-test-cache")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return func(*config) {}
	}
	return WithCacheDir(dir)
}
