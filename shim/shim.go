package shim

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

var (
	// ErrNotInitialized is returned when a zero-value Shim is used.
	// Construct shims with New.
	ErrNotInitialized = errors.New("shim not initialized")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("shim is closed")
	// ErrBusy is returned by Start while an execution is already in flight.
	ErrBusy = errors.New("entry script already executing")
)

// Shim embeds an interpreter runtime in the host process and runs the
// bundled application archive against host-supplied stdio descriptors.
//
// A Shim owns duplicates of the descriptors it was built over; the caller
// keeps its originals and remains responsible for them. The guest heap is
// capped at construction time and every execution runs under the same cap.
type Shim struct {
	engine   Engine
	runtime  wazero.Runtime
	cache    wazero.CompilationCache
	streams  *streamTriple
	strategy strategy

	// execSem serializes entry-script executions; capacity one.
	execSem chan struct{}

	mu       sync.Mutex
	payload  *Archive
	archives map[string]*Archive
	mounts   []*Archive
	closed   bool
}

// New initializes a shim over the caller's input and output descriptors.
//
// Initialization is ordered: the runtime comes up with catchable error
// reporting and the heap quota first, then the descriptors are duplicated
// and bound as the guest's stdio, then the bundled archive is registered
// and mounted. Failure at any step unwinds the previous ones and leaves
// the caller's descriptors untouched.
func New(fdIn, fdOut uintptr, opts ...Option) (*Shim, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.engine == nil {
		return nil, errors.New("nil engine")
	}

	ctx := context.Background()

	var cache wazero.CompilationCache
	var err error
	if cfg.diskCache {
		cacheDir := cfg.cacheDir
		if cacheDir == "" {
			cacheDir = defaultCacheDir()
		}
		cache, err = wazero.NewCompilationCacheWithDir(cacheDir)
		if err != nil {
			return nil, fmt.Errorf("create disk cache: %w", err)
		}
	}

	rtConfig := wazero.NewRuntimeConfig().
		WithCloseOnContextDone(true).
		WithMemoryLimitPages(cfg.memoryLimitPages)
	if cache != nil {
		rtConfig = rtConfig.WithCompilationCache(cache)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, rtConfig)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		if cache != nil {
			cache.Close(ctx)
		}
		rt.Close(ctx)
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}

	streams, err := bindStreams(fdIn, fdOut, cfg.errFd)
	if err != nil {
		if cache != nil {
			cache.Close(ctx)
		}
		rt.Close(ctx)
		return nil, err
	}

	strat := cfg.strategy()

	s := &Shim{
		engine:   cfg.engine,
		runtime:  rt,
		cache:    cache,
		streams:  streams,
		strategy: strat,
		execSem:  make(chan struct{}, 1),
		archives: make(map[string]*Archive),
	}

	a, err := s.LoadArchive(cfg.archive)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("load bundled archive: %w", err)
	}
	s.payload = a

	return s, nil
}

// Execute runs the bundled archive's entry script and blocks until it
// finishes. A script-level failure is written to the error stream as a
// single line and returned as an *EvalError; precondition failures return
// before anything executes.
func (s *Shim) Execute() error {
	task, err := s.Start(context.Background())
	if err != nil {
		return err
	}
	return task.Wait(context.Background())
}

// Start launches the entry script on the shim's execution strategy and
// returns a Task to join. ctx bounds the whole execution: once it is done
// the guest is torn down. One execution runs at a time; Start during an
// in-flight execution returns ErrBusy.
func (s *Shim) Start(ctx context.Context) (*Task, error) {
	if s.runtime == nil {
		return nil, ErrNotInitialized
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	entry := s.payload
	s.mu.Unlock()

	select {
	case s.execSem <- struct{}{}:
	default:
		return nil, ErrBusy
	}

	execCtx, cancel := context.WithCancel(ctx)
	task := newTask(cancel)
	source := s.engine.Require(entry.EntryPath())

	s.strategy.launch(task, func() *EvalError {
		defer func() {
			cancel()
			<-s.execSem
		}()
		evalErr := s.eval(execCtx, source)
		if evalErr != nil {
			fmt.Fprintf(s.streams.err, "entry script execution failed: %s\n", evalErr.Message)
		}
		return evalErr
	})

	return task, nil
}

// Payload returns the bundled archive the shim was initialized with.
func (s *Shim) Payload() *Archive {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payload
}

// Engine returns the engine executions run on.
func (s *Shim) Engine() Engine { return s.engine }

// Close tears the shim down. The runtime closes, cutting loose any running
// execution, and the duplicated descriptors are released. The caller's
// originals stay open. Close is idempotent.
func (s *Shim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	ctx := context.Background()

	var errs []error
	if s.runtime != nil {
		if err := s.runtime.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.cache != nil {
		if err := s.cache.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.streams != nil {
		if err := s.streams.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func defaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "gantry")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "gantry")
	}
	return filepath.Join(os.TempDir(), "gantry-cache")
}
