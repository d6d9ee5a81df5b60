// Package apperr defines the error taxonomy shared by the repository, service
// and handler layers. Every failure that crosses a layer boundary carries a
// Kind so handlers can map it to a status code without string matching.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// ValidationFailed: caller input violates an invariant; resubmit to fix.
	ValidationFailed Kind = "validation_failed"
	// NotFound: project, phase or activity id did not resolve.
	NotFound Kind = "not_found"
	// PhaseNotFound: the project resolved but the phase did not. Kept distinct
	// from NotFound so callers know which level of the path failed.
	PhaseNotFound Kind = "phase_not_found"
	// AccessDenied: authenticated but not authorized for this project.
	AccessDenied Kind = "access_denied"
	// StoreUnavailable: transient store failure, safe to retry.
	StoreUnavailable Kind = "store_unavailable"
	// Internal: unexpected programmer error; logged, never detailed to callers.
	Internal Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// KindOf extracts the Kind from err, or Internal for anything untyped.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the caller-safe message for err. Untyped errors report a
// generic message so internals never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
