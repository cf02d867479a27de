package wasm_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/wippyai/wasm-runtime/wasm"
)

func TestEncodeErrorIsMatchesByKind(t *testing.T) {
	a := &wasm.EncodeError{Kind: wasm.KindInvalidLimits, Detail: "min>max"}
	b := &wasm.EncodeError{Kind: wasm.KindInvalidLimits, Detail: "different detail"}
	c := &wasm.EncodeError{Kind: wasm.KindInvalidType}

	if !errors.Is(a, b) {
		t.Error("errors of the same Kind should match via errors.Is")
	}
	if errors.Is(a, c) {
		t.Error("errors of different Kind should not match via errors.Is")
	}
}

func TestEncodeErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &wasm.EncodeError{Kind: wasm.KindUnsupportedOpcode, Cause: cause}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap should return the wrapped cause")
	}
}

func TestEncodeErrorMessageIncludesPath(t *testing.T) {
	err := &wasm.EncodeError{Kind: wasm.KindIndexOutOfRange, Path: []string{"export", "0", "add"}, Detail: "out of range"}
	msg := err.Error()
	if msg == "" {
		t.Fatal("Error() returned empty string")
	}
	if !strings.Contains(msg, "export.0.add") {
		t.Errorf("Error() = %q, want it to contain the path %q", msg, "export.0.add")
	}
}
