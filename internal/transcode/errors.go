package transcode

import (
	"fmt"

	"github.com/promisszn/soroban-debugger-sub000/internal/dbgerr"
)

// Reason narrows dbgerr.KindInvalidArguments into the specific diagnostic
// names: OutOfRange, TypeMismatch, InvalidArgument, UnsupportedType.
type Reason string

const (
	ReasonOutOfRange       Reason = "OutOfRange"
	ReasonTypeMismatch     Reason = "TypeMismatch"
	ReasonInvalidArgument  Reason = "InvalidArgument"
	ReasonUnsupportedType  Reason = "UnsupportedType"
)

// Error is the transcoder's error, always of dbgerr.KindInvalidArguments,
// qualified by Reason and the JSON path at which the first failure occurred.
// The transcoder short-circuits on the first failure; sibling errors are
// never accumulated.
type Error struct {
	*dbgerr.Error
	Reason Reason
}

func newErr(reason Reason, path, msg string) *Error {
	return &Error{Error: dbgerr.InvalidArguments(path, msg), Reason: reason}
}

func errOutOfRange(path, typeTag, value, min, max string) *Error {
	return newErr(ReasonOutOfRange, path,
		fmt.Sprintf("value out of range for type %s: %s (valid range %s..%s)", typeTag, value, min, max))
}

func errTypeMismatch(path, expected, actual string) *Error {
	return newErr(ReasonTypeMismatch, path, fmt.Sprintf("expected %s but got %s", expected, actual))
}

func errInvalidArgument(path, msg string) *Error {
	return newErr(ReasonInvalidArgument, path, msg)
}

func errUnsupportedType(path, typeName string) *Error {
	return newErr(ReasonUnsupportedType, path, fmt.Sprintf("unsupported type: %s", typeName))
}
