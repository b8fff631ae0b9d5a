package shim

import (
	"fmt"
	"os"
)

// inputStream hands a host descriptor to the guest as its standard input.
// It exposes only Read so the runtime treats the stream as a plain
// non-seekable device; pipes and terminals must never be probed for
// position.
type inputStream struct {
	f *os.File
}

func (s *inputStream) Read(p []byte) (int, error) {
	return s.f.Read(p)
}

// outputStream hands a host descriptor to the guest as an output stream.
// Writes go straight to the descriptor, no buffering.
type outputStream struct {
	f *os.File
}

func (s *outputStream) Write(p []byte) (int, error) {
	return s.f.Write(p)
}

// streamTriple is the guest's stdio binding. All three files wrap
// duplicated descriptors owned by the shim; the caller keeps its originals
// and remains responsible for them.
type streamTriple struct {
	in  *inputStream
	out *outputStream
	err *outputStream
}

// bindStreams duplicates the caller's descriptors and wraps them as the
// guest's stdio triple.
func bindStreams(fdIn, fdOut, fdErr uintptr) (*streamTriple, error) {
	dupIn, err := dupDescriptor(fdIn)
	if err != nil {
		return nil, fmt.Errorf("duplicate input descriptor %d: %w", fdIn, err)
	}
	dupOut, err := dupDescriptor(fdOut)
	if err != nil {
		closeDescriptor(dupIn)
		return nil, fmt.Errorf("duplicate output descriptor %d: %w", fdOut, err)
	}
	dupErr, err := dupDescriptor(fdErr)
	if err != nil {
		closeDescriptor(dupIn)
		closeDescriptor(dupOut)
		return nil, fmt.Errorf("duplicate error descriptor %d: %w", fdErr, err)
	}

	return &streamTriple{
		in:  &inputStream{f: os.NewFile(dupIn, "shim-stdin")},
		out: &outputStream{f: os.NewFile(dupOut, "shim-stdout")},
		err: &outputStream{f: os.NewFile(dupErr, "shim-stderr")},
	}, nil
}

// Close releases the duplicated descriptors.
func (t *streamTriple) Close() error {
	var errs []error
	for _, f := range []*os.File{t.in.f, t.out.f, t.err.f} {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
