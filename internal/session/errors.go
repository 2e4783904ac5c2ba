package session

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrListingNotFound is returned when a listing id is not in the session's current results.
	ErrListingNotFound = errors.New("listing not found in session")
)
