package remote

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a remote failure. The sync engine's retry and
// fallback behavior is a match on this kind, nothing else.
type ErrorKind string

const (
	// KindNetwork covers connectivity and timeout failures: the request may
	// never have reached the backend, so retrying later is safe and reads
	// fall back to the local cache.
	KindNetwork ErrorKind = "network"
	// KindAuth covers authentication/authorization rejections.
	KindAuth ErrorKind = "auth"
	// KindValidation covers rejections of the request's content.
	KindValidation ErrorKind = "validation"
	// KindUnknown covers everything a transport could not classify.
	KindUnknown ErrorKind = "unknown"
)

// Error is a classified remote failure.
type Error struct {
	Kind ErrorKind
	Op   string // the remote operation, e.g. "upsert task"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("remote %s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the failure is worth retrying unchanged later.
// Only network failures are; a rejection of the request's content would just
// be rejected again.
func (e *Error) Retryable() bool { return e.Kind == KindNetwork }

// NetworkError tags err as a connectivity failure.
func NetworkError(op string, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}

// AuthError tags err as an authentication/authorization rejection.
func AuthError(op string, err error) *Error {
	return &Error{Kind: KindAuth, Op: op, Err: err}
}

// ValidationError tags err as a content rejection.
func ValidationError(op string, err error) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

// UnknownError tags err as unclassified.
func UnknownError(op string, err error) *Error {
	return &Error{Kind: KindUnknown, Op: op, Err: err}
}

// KindOf returns the classification of err, or KindUnknown if err carries no
// *Error in its chain.
func KindOf(err error) ErrorKind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

// IsNetwork reports whether err is classified as a connectivity failure.
func IsNetwork(err error) bool { return KindOf(err) == KindNetwork }

// IsRetryable reports whether err is worth retrying unchanged later.
func IsRetryable(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Retryable()
	}
	return false
}
