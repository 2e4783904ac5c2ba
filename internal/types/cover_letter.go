package types

import "strings"

// CoverLetterRequest asks for a letter tailored to one listing.
type CoverLetterRequest struct {
	ListingID  string `json:"listing_id" validate:"required"`
	Background string `json:"background" validate:"notblank"`
}

// Validate checks that a listing is referenced and the background is not blank.
func (r *CoverLetterRequest) Validate() error {
	return toValidationError(validate.Struct(r))
}

// CoverLetterResult is the outcome of one drafting attempt.
type CoverLetterResult struct {
	ListingID string
	Text      string
	Err       error
}

// OK reports whether drafting succeeded.
func (r CoverLetterResult) OK() bool {
	return r.Err == nil
}

// ValidateBackground rejects blank background text.
func ValidateBackground(background string) error {
	if strings.TrimSpace(background) == "" {
		return &ValidationError{Field: "background", Message: "must not be blank"}
	}
	return nil
}
