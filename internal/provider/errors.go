package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an absent album, disc, track or cover.
	// Terminal for the backend that returned it, but eligible for
	// priority fallback.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidLayout reports an on-disk structure that does not
	// match the declared album layout. Terminal; never falls back, so
	// operator misconfiguration surfaces loudly.
	ErrInvalidLayout = errors.New("invalid storage layout")

	// ErrInvalidRange reports a byte range starting at or past the end
	// of the resource. Terminal; maps to HTTP 416 at the serving
	// boundary.
	ErrInvalidRange = errors.New("invalid byte range")
)

// BackendKind classifies a BackendError for retry policy decisions.
type BackendKind int

const (
	BackendTransport BackendKind = iota
	BackendTimeout
	BackendPermissionDenied
)

func (k BackendKind) String() string {
	switch k {
	case BackendTimeout:
		return "timeout"
	case BackendPermissionDenied:
		return "permission denied"
	default:
		return "transport"
	}
}

// BackendError wraps a transient or environmental backend failure
// (network, I/O, permissions). Callers may retry with backoff, but the
// priority combinator never falls back past one: a failing preferred
// backend surfaces instead of silently masking an outage.
type BackendError struct {
	Kind BackendKind
	Err  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s error: %v", e.Kind, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// NewBackendError wraps err as a BackendError of the given kind.
func NewBackendError(kind BackendKind, err error) *BackendError {
	return &BackendError{Kind: kind, Err: err}
}

// IsBackendError reports whether err is (or wraps) a BackendError.
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

// Retryable reports whether err is worth retrying. Only backend
// transport and timeout failures qualify; NotFound, InvalidLayout and
// permission errors are terminal.
func Retryable(err error) bool {
	var be *BackendError
	if !errors.As(err, &be) {
		return false
	}
	return be.Kind == BackendTransport || be.Kind == BackendTimeout
}
