// Package apperror defines the error kinds the service layer surfaces to
// the transport layer. Every error carries the identifying key (slug, id,
// username) or current state, so handlers can build a useful response.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a service-layer failure.
type Kind string

const (
	KindNotFound   Kind = "NOT_FOUND"
	KindForbidden  Kind = "FORBIDDEN"
	KindConflict   Kind = "CONFLICT"
	KindValidation Kind = "VALIDATION_FAILED"
	KindTransient  Kind = "TRANSIENT"
)

// Error is the value-carrying error type shared by all domains.
type Error struct {
	Kind    Kind
	Message string
	Key     string      // identifying key of the resource involved
	Current interface{} // current state, set on Conflict so callers can refresh
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(key, format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Key: key, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(key, format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Key: key, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a write conflict. current is the state the caller
// should refresh from; it may be nil when no fresher state exists.
func Conflict(key string, current interface{}, format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Key: key, Current: current, Message: fmt.Sprintf(format, args...)}
}

func Validation(err error) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Err: err}
}

// Transient wraps a storage failure that is safe to retry as a whole
// operation. Timeouts and disconnects land here, never in NotFound.
func Transient(err error) *Error {
	return &Error{Kind: KindTransient, Message: "storage temporarily unavailable", Err: err}
}

// KindOf extracts the kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsForbidden(err error) bool  { return KindOf(err) == KindForbidden }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsTransient(err error) bool  { return KindOf(err) == KindTransient }
