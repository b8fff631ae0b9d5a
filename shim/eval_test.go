package shim

import (
	"context"
	"errors"
	"testing"
)

type emptyError struct{}

func (emptyError) Error() string { return "" }

func TestClassify(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		kind ErrorKind
		msg  string
	}{
		{
			name: "done context wins",
			ctx:  canceled,
			err:  errors.New("module closed with context canceled"),
			kind: KindFatal,
			msg:  "context canceled",
		},
		{
			name: "engine fault",
			ctx:  context.Background(),
			err:  errors.New("wasm error: unreachable"),
			kind: KindFatal,
			msg:  "wasm error: unreachable",
		},
		{
			name: "messageless failure",
			ctx:  context.Background(),
			err:  emptyError{},
			kind: KindFatal,
			msg:  "unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.ctx, tt.err)
			if got.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, got.Kind)
			}
			if got.Message != tt.msg {
				t.Errorf("expected message %q, got %q", tt.msg, got.Message)
			}
		})
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindCompile, "compile"},
		{KindException, "exception"},
		{KindFatal, "fatal"},
		{ErrorKind(0), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestEvalErrorMessage(t *testing.T) {
	err := &EvalError{Kind: KindException, Message: "module closed with exit_code(1)"}
	want := "exception: module closed with exit_code(1)"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
