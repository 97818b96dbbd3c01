package client

import "fmt"

// NetworkError is a transport-level failure (connection refused, timeout,
// cancelled context). Retryable by the caller; the engine never retries
// automatically.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError checks if error is NetworkError
func IsNetworkError(err error) bool {
	_, ok := err.(*NetworkError)
	return ok
}

// SubmissionError means the backend rejected the request (non-2xx). Not
// retryable without changing the payload; Message carries the backend's
// explanation.
type SubmissionError struct {
	StatusCode int
	Message    string
}

func (e *SubmissionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend rejected request (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend rejected request (status %d)", e.StatusCode)
}

// IsSubmissionError checks if error is SubmissionError
func IsSubmissionError(err error) bool {
	_, ok := err.(*SubmissionError)
	return ok
}
