// Package bridge keeps the bundled service running behind pipe-backed
// stdio and frames host requests onto it.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/gantrylabs/gantry/shim"
)

// ExitTimeout bounds how long Stop waits for the service to drain after
// its stdin closes.
const ExitTimeout = 5 * time.Second

// Bridge is a running shim whose guest stdio is bound to host-side pipes.
// The host writes requests into Stdin and reads responses from Stdout;
// the service keeps state between requests until Stop.
type Bridge struct {
	stdin  *os.File
	stdout *os.File
	shim   *shim.Shim
	task   *shim.Task
	exited chan error

	stopOnce sync.Once
	stopErr  error
}

// New builds a shim over fresh pipe pairs and launches the bundled service
// on it.
func New(opts ...shim.Option) (*Bridge, error) {
	guestIn, hostIn, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}
	hostOut, guestOut, err := os.Pipe()
	if err != nil {
		guestIn.Close()
		hostIn.Close()
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}

	// The service has to run beside the host whatever the platform's
	// default strategy is, so force the worker.
	opts = append(opts, shim.WithWorkerExecution())

	s, err := shim.New(guestIn.Fd(), guestOut.Fd(), opts...)
	if err != nil {
		guestIn.Close()
		hostIn.Close()
		hostOut.Close()
		guestOut.Close()
		return nil, fmt.Errorf("initialize shim: %w", err)
	}

	// The shim holds duplicates; the guest-side originals can go.
	guestIn.Close()
	guestOut.Close()

	task, err := s.Start(context.Background())
	if err != nil {
		s.Close()
		hostIn.Close()
		hostOut.Close()
		return nil, fmt.Errorf("start service: %w", err)
	}

	b := &Bridge{
		stdin:  hostIn,
		stdout: hostOut,
		shim:   s,
		task:   task,
		exited: make(chan error, 1),
	}

	go func() {
		b.exited <- task.Wait(context.Background())
		close(b.exited)
		s.Close()
	}()

	return b, nil
}

// Stdin returns the write side of the service's standard input.
func (b *Bridge) Stdin() io.Writer { return b.stdin }

// Stdout returns the read side of the service's standard output.
func (b *Bridge) Stdout() io.Reader { return b.stdout }

// Exited reports service termination. A nil value means the service loop
// ended cleanly after its stdin closed.
func (b *Bridge) Exited() <-chan error { return b.exited }

// Stop closes the service's stdin so its loop sees EOF, waits up to
// ExitTimeout for it to finish, then releases the host pipes. A service
// that ignores EOF is abandoned.
func (b *Bridge) Stop() error {
	b.stopOnce.Do(func() {
		b.stdin.Close()
		select {
		case err := <-b.exited:
			b.stopErr = err
		case <-time.After(ExitTimeout):
			b.task.Abandon()
			b.stopErr = errors.New("timed out waiting for service exit")
		}
		b.stdout.Close()
	})
	return b.stopErr
}

var (
	defaultBridge *Bridge
	startOnce     sync.Once
	startErr      error
)

// Start returns the process-wide bridge, creating it on first use. Later
// calls return the same bridge, or the original startup error.
func Start(opts ...shim.Option) (*Bridge, error) {
	startOnce.Do(func() {
		defaultBridge, startErr = New(opts...)
	})
	if startErr != nil {
		return nil, startErr
	}
	return defaultBridge, nil
}

// Stop shuts down the process-wide bridge if Start created one.
func Stop() error {
	if startErr != nil || defaultBridge == nil {
		return nil
	}
	return defaultBridge.Stop()
}
