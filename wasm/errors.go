package wasm

import (
	"fmt"
	"strings"
)

// Kind categorizes an encode failure by semantic meaning, not by Go type.
type Kind string

const (
	KindIndexOutOfRange     Kind = "index_out_of_range"
	KindSectionCountMismatch Kind = "section_count_mismatch"
	KindInvalidLimits       Kind = "invalid_limits"
	KindInvalidType         Kind = "invalid_type"
	KindInvalidName         Kind = "invalid_name"
	KindUnsupportedOpcode   Kind = "unsupported_opcode"
	KindDuplicateSection    Kind = "duplicate_section"
)

// EncodeError is the structured error type reported by EncodeBinary and
// EncodeText. The only construction-time builder method that returns one is
// Module.SetStart (KindDuplicateSection on a second call); all other
// validation happens at encode time.
type EncodeError struct {
	Cause  error
	Kind   Kind
	Detail string
	Path   []string
}

func (e *EncodeError) Error() string {
	var b strings.Builder
	b.WriteString("[encode] ")
	b.WriteString(string(e.Kind))
	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

func (e *EncodeError) Unwrap() error { return e.Cause }

// Is reports whether target is an *EncodeError of the same Kind.
func (e *EncodeError) Is(target error) bool {
	t, ok := target.(*EncodeError)
	return ok && e.Kind == t.Kind
}

func newErr(kind Kind, path []string, format string, args ...any) *EncodeError {
	return &EncodeError{
		Kind:   kind,
		Path:   path,
		Detail: fmt.Sprintf(format, args...),
	}
}

func indexOutOfRange(path []string, index, max uint32) *EncodeError {
	return newErr(KindIndexOutOfRange, path, "index %d out of range (have %d entries)", index, max)
}
