package shim

import (
	"context"
	"errors"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/sys"
)

// ErrorKind classifies entry-script failures.
type ErrorKind int

const (
	// KindCompile means the engine module failed to build; nothing executed.
	KindCompile ErrorKind = iota + 1
	// KindException means the guest terminated with a structured failure,
	// reported through a nonzero exit.
	KindException
	// KindFatal means the engine itself died: a trap, an exhausted limit,
	// or a cancelled execution.
	KindFatal
)

func (k ErrorKind) String() string {
	switch k {
	case KindCompile:
		return "compile"
	case KindException:
		return "exception"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// unknownError stands in when a failure carries no usable message.
const unknownError = "unknown error"

// EvalError is a classified entry-script failure.
type EvalError struct {
	Kind    ErrorKind
	Message string
}

func (e *EvalError) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// eval runs source through the engine under a two-phase protocol: build the
// executable unit or fail without executing anything, then execute and
// release the unit no matter how execution ends.
func (s *Shim) eval(ctx context.Context, source string) *EvalError {
	compiled, err := s.runtime.CompileModule(ctx, s.engine.Module())
	if err != nil {
		return &EvalError{Kind: KindCompile, Message: err.Error()}
	}
	defer compiled.Close(context.Background())

	mod, err := s.runtime.InstantiateModule(ctx, compiled, s.moduleConfig(source))
	if mod != nil {
		mod.Close(context.Background())
	}
	if err != nil {
		return classify(ctx, err)
	}
	return nil
}

// moduleConfig assembles one execution's guest environment: the bound
// stdio triple, every registered archive mounted read-only, and the engine
// invocation for source.
func (s *Shim) moduleConfig(source string) wazero.ModuleConfig {
	s.mu.Lock()
	mounts := make([]*Archive, len(s.mounts))
	copy(mounts, s.mounts)
	s.mu.Unlock()

	fsCfg := wazero.NewFSConfig()
	for _, a := range mounts {
		fsCfg = fsCfg.WithFSMount(a.fsys, a.MountPath())
	}

	return wazero.NewModuleConfig().
		WithStdin(s.streams.in).
		WithStdout(s.streams.out).
		WithStderr(s.streams.err).
		WithFSConfig(fsCfg).
		WithArgs(s.engine.Args(source)...).
		WithName("")
}

// classify maps an execution failure onto the error taxonomy. A done
// context wins over whatever error shape the runtime surfaced for it.
func classify(ctx context.Context, err error) *EvalError {
	if ctx.Err() != nil {
		return &EvalError{Kind: KindFatal, Message: ctx.Err().Error()}
	}

	var exit *sys.ExitError
	if errors.As(err, &exit) {
		return &EvalError{Kind: KindException, Message: exit.Error()}
	}

	msg := err.Error()
	if msg == "" {
		msg = unknownError
	}
	return &EvalError{Kind: KindFatal, Message: msg}
}
