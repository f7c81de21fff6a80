package sync

import "fmt"

// ValidationError reports invalid caller input. It is surfaced before any
// network call and leaves all state untouched.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// BackendError reports a non-success response from the backend. The message
// is the backend-provided error when the response body carried one. No local
// state is mutated; the caller may retry the operation.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend returned HTTP %d: %s", e.StatusCode, e.Message)
}
