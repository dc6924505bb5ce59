package analyzer

import "fmt"

// ModelUnavailableError is fatal: every attempt of the mandatory first
// analysis request failed, so no report can be produced.
type ModelUnavailableError struct {
	Attempts int
	Err      error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("model unavailable after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }
