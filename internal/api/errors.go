package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrUnauthorized is returned when the server rejects the bearer token
	// with a 401. This is the only failure that forces a session reset.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")

	// ErrServerUnreachable is returned for connection-level failures
	// (DNS, refused, TLS, transport timeout).
	ErrServerUnreachable = errors.New("server unreachable")

	// ErrDecode is returned when the response body does not match the
	// expected JSON shape.
	ErrDecode = errors.New("malformed response")
)

// Error is the base error type for API failures carrying an HTTP status.
type Error struct {
	// Status is the HTTP status code of the failed response.
	Status int
	// Body is the raw response body, truncated for logging.
	Body string
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("api: server returned %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("api: server returned %d", e.Status)
}

// Is reports whether this error matches a sentinel error.
// It supports errors.Is(err, ErrUnauthorized) and errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// UnreachableError wraps a connection-level failure.
type UnreachableError struct {
	// Cause is the underlying transport error.
	Cause error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("api: server unreachable: %v", e.Cause)
}

// Unwrap returns the underlying error cause.
func (e *UnreachableError) Unwrap() error { return e.Cause }

// Is reports whether this error matches ErrServerUnreachable.
func (e *UnreachableError) Is(target error) bool {
	return target == ErrServerUnreachable
}

// DecodeError wraps a JSON decoding failure. Malformed responses are
// treated like transient failures by the stores: surfaced, never escalated.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("api: malformed response: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// Is reports whether this error matches ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
