package shim

import (
	"context"
	"sync"
)

// Task is a handle on one entry-script execution. It supports joining with
// a deadline and abandoning the execution outright.
type Task struct {
	done   chan struct{}
	cancel context.CancelFunc

	mu  sync.Mutex
	err *EvalError
}

func newTask(cancel context.CancelFunc) *Task {
	return &Task{
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// finish records the execution result and releases waiters. Called exactly
// once, by the strategy that launched the task.
func (t *Task) finish(err *EvalError) {
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
	close(t.done)
}

// Wait blocks until the execution finishes or ctx is done. A finished
// execution yields its result; an expired ctx yields ctx's error while the
// execution keeps running. Call Abandon to stop an execution nobody will
// wait for again.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.result()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Abandon cancels the execution's context, which tears the guest down. The
// task still finishes, with a fatal eval error. Safe to call more than once
// and after completion.
func (t *Task) Abandon() {
	t.cancel()
}

// Done reports completion without blocking.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

func (t *Task) result() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err == nil {
		return nil
	}
	return t.err
}
