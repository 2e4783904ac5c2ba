// Package server provides the HTTP API for job search sessions and cover letter drafting.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/career-finder/internal/coverletter"
	"github.com/jonathan/career-finder/internal/jobsource"
	"github.com/jonathan/career-finder/internal/session"
	"github.com/jonathan/career-finder/internal/types"
)

// ErrHistoryDisabled is returned when no database is configured.
var ErrHistoryDisabled = errors.New("history is not enabled: no database configured")

// ErrInvalidSessionID indicates a malformed session id in the path
type ErrInvalidSessionID struct {
	Value string
}

func (e *ErrInvalidSessionID) Error() string {
	return fmt.Sprintf("invalid session id: %q", e.Value)
}

// ErrBadRequestBody indicates a request body that is not valid JSON
type ErrBadRequestBody struct {
	Cause error
}

func (e *ErrBadRequestBody) Error() string {
	return fmt.Sprintf("invalid request body: %v", e.Cause)
}

func (e *ErrBadRequestBody) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *types.ValidationError
		sessionIDErr  *ErrInvalidSessionID
		bodyErr       *ErrBadRequestBody
		sourceErr     *jobsource.SourceUnavailableError
		draftErr      *coverletter.DraftUnavailableError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &sessionIDErr), errors.As(err, &bodyErr):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrListingNotFound):
		return http.StatusNotFound
	case errors.As(err, &sourceErr), errors.As(err, &draftErr):
		return http.StatusBadGateway
	case errors.Is(err, ErrHistoryDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the text shown to clients. Recoverable upstream
// failures surface their short message rather than the wrapped cause.
func errorMessage(err error) string {
	var (
		sourceErr *jobsource.SourceUnavailableError
		draftErr  *coverletter.DraftUnavailableError
	)
	switch {
	case errors.As(err, &sourceErr):
		return sourceErr.Message
	case errors.As(err, &draftErr):
		return draftErr.Message
	case HTTPStatus(err) == http.StatusInternalServerError:
		return "internal server error"
	default:
		return err.Error()
	}
}

// errorKind is a stable machine-readable error code for the response body.
func errorKind(err error) string {
	var (
		validationErr *types.ValidationError
		sourceErr     *jobsource.SourceUnavailableError
		draftErr      *coverletter.DraftUnavailableError
	)
	switch {
	case errors.As(err, &validationErr):
		return "validation_error"
	case errors.Is(err, session.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, session.ErrListingNotFound):
		return "listing_not_found"
	case errors.As(err, &sourceErr):
		return "source_unavailable"
	case errors.As(err, &draftErr):
		return "draft_unavailable"
	case errors.Is(err, ErrHistoryDisabled):
		return "history_disabled"
	}
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		return "bad_request"
	default:
		return "internal_error"
	}
}
