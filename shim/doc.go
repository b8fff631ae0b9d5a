// Package shim boots a bundled application inside an embedded WASM
// interpreter, wired to stdio descriptors the host process supplies.
//
// # Overview
//
// A Shim owns one interpreter runtime with a fixed heap quota, a stdio
// binding built from duplicated host descriptors, and a registry of
// read-only application archives mounted into the guest filesystem. The
// bundled archive and its entry script are compiled into the binary;
// Execute runs that entry script to completion.
//
// # Basic Usage
//
//	s, err := shim.New(os.Stdin.Fd(), os.Stdout.Fd())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	if err := s.Execute(); err != nil {
//	    // the failure line is already on the error stream
//	    os.Exit(1)
//	}
//
// # Tasks
//
// Start returns a Task for callers that need a deadline or early
// abandonment:
//
//	task, _ := s.Start(ctx)
//	if err := task.Wait(waitCtx); err != nil {
//	    task.Abandon() // tear the guest down
//	}
//
// # Failure Taxonomy
//
// Script failures come back as *EvalError with one of three kinds:
// KindCompile (the engine module never built), KindException (the guest
// exited nonzero carrying the script's error state), and KindFatal (the
// engine itself died: trap, exhausted limit, cancellation). The same
// failure is mirrored as a single line on the shim's error stream.
//
// # Engine Interface
//
// To embed a different interpreter build, implement the [Engine]
// interface. See [github.com/gantrylabs/gantry/engine/quickjs] for the
// bundled engine.
package shim
