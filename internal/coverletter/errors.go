package coverletter

import "fmt"

// DraftUnavailableError means the text-generation call failed or returned
// unusable data. It is recoverable: the caller shows Message instead of a letter.
type DraftUnavailableError struct {
	Message string
	Cause   error
}

func (e *DraftUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cover letter unavailable: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cover letter unavailable: %s", e.Message)
}

func (e *DraftUnavailableError) Unwrap() error {
	return e.Cause
}
