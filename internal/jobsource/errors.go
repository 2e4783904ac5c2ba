package jobsource

import "fmt"

// SourceUnavailableError means the job source failed or returned unusable data.
// It is recoverable: the caller shows Message in place of results.
type SourceUnavailableError struct {
	Message string
	Cause   error
}

func (e *SourceUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("job source unavailable: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("job source unavailable: %s", e.Message)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Cause
}

// BoardError records a failure of a single board during a fan-out scrape.
type BoardError struct {
	Board string
	Cause error
}

func (e *BoardError) Error() string {
	return fmt.Sprintf("board %s: %v", e.Board, e.Cause)
}

func (e *BoardError) Unwrap() error {
	return e.Cause
}
