package es

import (
	"errors"
	"fmt"
)

// Kind classifies the errors the engine surfaces to callers. A provider
// or codec failure is always translated into one of these kinds before
// it crosses the es package boundary.
type Kind int

const (
	// KindSequenceMismatch indicates apply_event received an event whose
	// sequence number was not event_seq+1, or a provider returned a gap
	// in an otherwise contiguous stream. Not retryable; fix caller logic.
	KindSequenceMismatch Kind = iota

	// KindAggregateMismatch indicates an event or commit carried a
	// different aggregate_id than the aggregate it was applied to. Not
	// retryable; fix caller logic.
	KindAggregateMismatch

	// KindCorruptedHistory indicates commit-stream validation failed
	// during rehydration. Not retryable; requires operator intervention.
	KindCorruptedHistory

	// KindConcurrency indicates an optimistic write conflict: another
	// writer already committed at the sequence number this writer
	// attempted to claim. Retryable after reload and re-intent.
	KindConcurrency

	// KindStorageUnavailable indicates a transport or backend failure
	// reported by a provider. Retryable at the caller's discretion.
	KindStorageUnavailable

	// KindSerializationFailed indicates a codec could not encode or
	// decode a payload. Not retryable; investigate the schema.
	KindSerializationFailed
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindSequenceMismatch:
		return "SequenceMismatch"
	case KindAggregateMismatch:
		return "AggregateMismatch"
	case KindCorruptedHistory:
		return "CorruptedHistory"
	case KindConcurrency:
		return "Concurrency"
	case KindStorageUnavailable:
		return "StorageUnavailable"
	case KindSerializationFailed:
		return "SerializationFailed"
	default:
		return "Unknown"
	}
}

// Error is the typed error the engine raises. It carries a Kind so
// callers can branch on recovery strategy without string matching, and
// it wraps the original cause so nothing is ever swallowed.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// New creates an Error of the given kind with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error of the given kind that wraps cause. If cause is
// already an *Error, its Kind is preserved and message is prefixed onto
// it so translation boundaries never lose finer-grained classification.
func Wrap(kind Kind, message string, cause error) *Error {
	var existing *Error
	if errors.As(cause, &existing) {
		kind = existing.Kind
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
