//go:build !windows

package shim

// defaultStrategy runs entry scripts on a worker goroutine.
func defaultStrategy() strategy {
	return workerStrategy{}
}
