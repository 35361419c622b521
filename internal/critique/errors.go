package critique

import "fmt"

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// CollaboratorError means the provider refused the request or answered with
// something that is not a usable analysis. Retrying will not help.
type CollaboratorError struct {
	Provider   string
	StatusCode int // 0 when the response itself was malformed
	Message    string
	Err        error
}

func (e *CollaboratorError) Error() string {
	prefix := "ai provider"
	if e.Provider != "" {
		prefix = e.Provider
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s status %d: %s", prefix, e.StatusCode, truncate(e.Message, 200))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
