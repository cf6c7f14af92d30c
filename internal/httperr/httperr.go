// Package httperr defines the error condition taxonomy used by the HTTP layer.
//
// A condition raised during request handling is one of two kinds:
//
//   - A *well-known* condition: an *Error carrying an HTTP status code and a
//     human-readable reason phrase. Well-known conditions are resolved at the
//     nearest responder, surfaced to the client as the matching status, and
//     never logged as errors.
//   - An *unanticipated* condition: any other error (or raw panic value).
//     Unanticipated conditions are always surfaced as a generic 500 response
//     and logged exactly once at error level by whichever interception
//     boundary absorbs them.
//
// Callers should match well-known conditions with IsWellKnown (or errors.As)
// rather than type-switching, so wrapped conditions are still recognized.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a well-known error condition: an anticipated failure with a
// defined HTTP status code and reason phrase.
type Error struct {
	// Status is the HTTP status code, in the 4xx/5xx range.
	Status int
	// Reason is the human-readable reason phrase surfaced to the client.
	Reason string
}

// New returns a well-known condition for the given status code. The reason
// phrase is the standard one for the code (RFC 9110); codes in 400–599 with
// no registered phrase fall back to a generic reason so the mapping stays
// total.
func New(status int) *Error {
	return &Error{Status: status, Reason: Reason(status)}
}

// NewWithReason returns a well-known condition with an explicit reason
// phrase, for the rare cases where the standard phrase is not wanted.
func NewWithReason(status int, reason string) *Error {
	return &Error{Status: status, Reason: reason}
}

// Error implements the error interface, e.g. "404 Not Found".
func (e *Error) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Reason)
}

// Reason maps a status code to its standard reason phrase. Unregistered codes
// map to "Unknown Error" rather than an empty string.
func Reason(status int) string {
	if r := http.StatusText(status); r != "" {
		return r
	}
	return "Unknown Error"
}

// IsWellKnown reports whether err is (or wraps) a well-known condition and
// returns it when so.
func IsWellKnown(err error) (*Error, bool) {
	var he *Error
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}
