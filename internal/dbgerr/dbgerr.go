// Package dbgerr defines the closed error taxonomy shared across the debugger
// core. Every fallible operation in the core returns (or wraps) one of these
// kinds rather than an ad-hoc error string, so frontends can render a stable
// one-line message and, in verbose mode, the underlying cause chain.
package dbgerr

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error categories the core can report.
type Kind string

const (
	KindWasmLoad         Kind = "wasm_load"
	KindExecution        Kind = "execution"
	KindInvalidFunction  Kind = "invalid_function"
	KindInvalidArguments Kind = "invalid_arguments"
	KindBreakpoint       Kind = "breakpoint"
	KindStorage          Kind = "storage"
	KindFile             Kind = "file"
)

// Error is a tagged variant carrying a kind, a human message, an optional
// source chain, and an optional JSON path (populated by the argument
// transcoder).
type Error struct {
	Kind    Kind
	Message string
	Path    string
	Cause   error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newErr(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Message: msg, Cause: cause}
}

func WasmLoad(msg string, cause error) *Error         { return newErr(KindWasmLoad, msg, cause) }
func Execution(msg string, cause error) *Error        { return newErr(KindExecution, msg, cause) }
func InvalidFunction(name string) *Error {
	return newErr(KindInvalidFunction, fmt.Sprintf("function %q is not exported", name), nil)
}
func Breakpoint(msg string, cause error) *Error { return newErr(KindBreakpoint, msg, cause) }
func Storage(msg string, cause error) *Error    { return newErr(KindStorage, msg, cause) }
func File(path string, cause error) *Error {
	return &Error{Kind: KindFile, Message: fmt.Sprintf("I/O failure on %s", path), Path: path, Cause: cause}
}

// InvalidArguments constructs an argument-transcoder error qualified by a
// JSON path such as `args[2].value.elements[0]`.
func InvalidArguments(path, msg string) *Error {
	return &Error{Kind: KindInvalidArguments, Message: msg, Path: path}
}

// Is reports whether target is an *Error of the same Kind, so
// errors.Is(err, dbgerr.Sentinel(dbgerr.KindExecution)) matches by kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// Sentinel returns a zero-message *Error of the given kind, suitable as the
// target of errors.Is(err, dbgerr.Sentinel(dbgerr.KindExecution)).
func Sentinel(k Kind) *Error { return &Error{Kind: k} }
