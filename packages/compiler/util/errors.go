package util

import (
	"errors"
	"fmt"
)

// Compilation error kinds. Every *CompileError unwraps to one of these.
var (
	ErrUnresolvableIdentity = errors.New("unresolvable identity")
	ErrIllegalHostBinding   = errors.New("illegal host binding")
	ErrMalformedQuery       = errors.New("malformed query")
	ErrUnsupportedTarget    = errors.New("unsupported event target")
	ErrParse                = errors.New("parse error")
)

// CompileError aborts compilation of a single definition.
type CompileError struct {
	Kind error
	Msg  string
	Span *ParseSourceSpan
}

// NewCompileError creates a CompileError of the given kind
func NewCompileError(kind error, span *ParseSourceSpan, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Msg: fmt.Sprintf(format, args...), Span: span}
}

func (e *CompileError) Error() string {
	if e.Span == nil || e.Span.Start == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s (%s)", e.Msg, e.Span.Start)
}

// Unwrap returns the error kind
func (e *CompileError) Unwrap() error {
	return e.Kind
}
