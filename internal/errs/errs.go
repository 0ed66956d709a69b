// Package errs defines the error kinds shared across pipeline steps so that
// callers can map a failure onto a stable outcome without inspecting the
// underlying cause.
package errs

import "errors"

// Kind classifies a pipeline failure by the responsibility that produced it.
type Kind int

const (
	// KindLookup marks a survey or layout that could not be found or reached.
	KindLookup Kind = iota + 1
	// KindMapping marks an external document missing its required shape.
	KindMapping
	// KindSerialization marks malformed auxiliary JSON or an unencodable payload.
	KindSerialization
	// KindTransport marks a queue send failure.
	KindTransport
)

// Error carries a fixed, human-readable message identifying the failed
// operation. The low-level cause is kept for logging via Unwrap but never
// shown in the message itself.
type Error struct {
	kind  Kind
	msg   string
	cause error
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.cause }

// Kind reports the failure classification.
func (e *Error) Kind() Kind { return e.kind }

// New builds a classified error with a fixed message.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Wrap builds a classified error that retains its cause for diagnostics.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{kind: kind, msg: msg, cause: cause}
}

// KindOf extracts the classification from err, or zero when err carries none.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.kind
	}
	return 0
}

// IsKind reports whether err (or anything it wraps) has the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
