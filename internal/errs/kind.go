package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a data-access failure so callers can pick a response
// without inspecting driver errors.
type Kind string

const (
	// KindConnection means the database could not be reached.
	KindConnection Kind = "CONNECTION_FAILURE"
	// KindNotFound means a referenced student or attendance id does not exist.
	KindNotFound Kind = "NOT_FOUND"
	// KindConflict means a uniqueness invariant would be broken.
	KindConflict Kind = "CONFLICT"
	// KindInvalidArgument means the input is malformed or outside its domain.
	KindInvalidArgument Kind = "INVALID_ARGUMENT"
	// KindPersistence is any other database-reported failure.
	KindPersistence Kind = "PERSISTENCE_FAILURE"
)

// Error is a classified data-access failure.
//
// Field names the offending column when one is known (e.g. "roll_no" on
// a Conflict). Err keeps the underlying cause for logs and errors.Is.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same Kind, so sentinel comparisons like
// errors.Is(err, errs.ErrNotFound) work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Field == "" || t.Field == e.Field)
}

// Sentinels for errors.Is checks.
var (
	ErrConnection      = &Error{Kind: KindConnection}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrPersistence     = &Error{Kind: KindPersistence}
)

// KindOf returns the Kind of the first *Error in err's chain, or "" when
// err is nil or unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func Connection(err error, message string) *Error {
	return &Error{Kind: KindConnection, Message: message, Err: err}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a duplicate on field.
func Conflict(field, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Field: field, Message: fmt.Sprintf(format, args...)}
}

func InvalidArgument(field, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Field: field, Message: fmt.Sprintf(format, args...)}
}

func Persistence(err error, message string) *Error {
	return &Error{Kind: KindPersistence, Message: message, Err: err}
}
