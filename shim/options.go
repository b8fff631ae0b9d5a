package shim

import (
	"os"

	"github.com/gantrylabs/gantry/engine/quickjs"
	"github.com/gantrylabs/gantry/payload"
)

// Memory limits in 64KiB WASM pages.
const (
	MemoryLimit16MB  uint32 = 256
	MemoryLimit64MB  uint32 = 1024
	MemoryLimit256MB uint32 = 4096
	MemoryLimit1GB   uint32 = 16384
)

// DefaultMemoryLimit caps the guest heap at 1GiB.
const DefaultMemoryLimit = MemoryLimit1GB

// Option configures a Shim.
type Option func(*config)

type config struct {
	engine           Engine
	archive          []byte
	memoryLimitPages uint32
	errFd            uintptr
	strat            strategy
	diskCache        bool
	cacheDir         string
}

func defaultConfig() config {
	return config{
		engine:           quickjs.New(),
		archive:          payload.Archive,
		memoryLimitPages: DefaultMemoryLimit,
		errFd:            os.Stderr.Fd(),
	}
}

func (c *config) strategy() strategy {
	if c.strat != nil {
		return c.strat
	}
	return defaultStrategy()
}

// WithEngine replaces the bundled QuickJS engine.
func WithEngine(e Engine) Option {
	return func(c *config) {
		c.engine = e
	}
}

// WithArchive replaces the bundled application archive.
func WithArchive(raw []byte) Option {
	return func(c *config) {
		c.archive = raw
	}
}

// WithMemoryLimit sets the guest heap limit in 64KiB pages.
// Use the MemoryLimit* constants.
func WithMemoryLimit(pages uint32) Option {
	return func(c *config) {
		c.memoryLimitPages = pages
	}
}

// WithErrorDescriptor redirects the shim's error stream away from the
// process's standard error. The descriptor is duplicated like the others.
func WithErrorDescriptor(fd uintptr) Option {
	return func(c *config) {
		c.errFd = fd
	}
}

// WithInlineExecution runs entry scripts on the calling goroutine instead
// of a worker. This is the default on Windows.
func WithInlineExecution() Option {
	return func(c *config) {
		c.strat = inlineStrategy{}
	}
}

// WithWorkerExecution runs entry scripts on a worker goroutine. This is the
// default everywhere except Windows.
func WithWorkerExecution() Option {
	return func(c *config) {
		c.strat = workerStrategy{}
	}
}

// WithDiskCache enables disk-based caching of the compiled engine module.
func WithDiskCache() Option {
	return func(c *config) {
		c.diskCache = true
	}
}

// WithCacheDir enables disk caching in a specific directory.
func WithCacheDir(dir string) Option {
	return func(c *config) {
		c.diskCache = true
		c.cacheDir = dir
	}
}
