package errors

import "fmt"

// Mutation error taxonomy. Rollback behavior depends only on the category,
// never on the status code detail.

// ValidationError is a local pre-flight failure. The command never mutated
// state, so there is nothing to roll back.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NetworkError wraps a transport-level failure (connection refused, timeout).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend unavailable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError means the server understood the request and rejected it
// (permission denied, thread locked, plain 500). Message comes from the
// response body when one was readable.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server rejected request (status %d)", e.StatusCode)
	}
	return e.Message
}

// StaleEntityError means the target vanished locally before the mutation
// settled (its thread was deleted, or the view was replaced). Rollback is a
// no-op; the error is surfaced but non-fatal.
type StaleEntityError struct {
	Key string
}

func (e *StaleEntityError) Error() string {
	return fmt.Sprintf("entity %s no longer present locally", e.Key)
}

// BusyError is the single-flight rejection: another mutation for the same
// entity is still in flight.
type BusyError struct {
	Key string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("mutation already in flight for %s", e.Key)
}
