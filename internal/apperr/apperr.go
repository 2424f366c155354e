// Package apperr carries the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindUnauthorized      Kind = "unauthorized"
	KindForbidden         Kind = "forbidden"
	KindUnsupportedFormat Kind = "unsupported_format"
	KindMalformedPayload  Kind = "malformed_payload"
	KindBatchDeleteFailed Kind = "batch_delete_failed"
	KindInternal          Kind = "internal_error"
)

// Error is a classified failure. Detail is a client-safe summary of Err;
// Err itself only reaches the logs.
type Error struct {
	Kind    Kind
	Message string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) *Error        { return New(KindValidation, msg) }
func NotFound(msg string) *Error          { return New(KindNotFound, msg) }
func Conflict(msg string) *Error          { return New(KindConflict, msg) }
func Unauthorized(msg string) *Error      { return New(KindUnauthorized, msg) }
func Forbidden(msg string) *Error         { return New(KindForbidden, msg) }
func UnsupportedFormat(msg string) *Error { return New(KindUnsupportedFormat, msg) }

// BatchDeleteFailed wraps a rolled-back batch delete. detail names the step
// that failed and is shown to the client; err is kept for logs.
func BatchDeleteFailed(msg, detail string, err error) *Error {
	return &Error{Kind: KindBatchDeleteFailed, Message: msg, Detail: detail, Err: err}
}

func MalformedPayload(msg string, err error) *Error {
	return Wrap(KindMalformedPayload, msg, err)
}

func Internal(msg string, err error) *Error {
	return Wrap(KindInternal, msg, err)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// PublicMessage is the text safe to show a client.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal server error"
	}
	if e.Kind == KindInternal {
		if e.Message != "" {
			return e.Message
		}
		return "internal server error"
	}
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Error()
}
