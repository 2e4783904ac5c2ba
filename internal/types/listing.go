// Package types provides the data model shared by the job source, drafter, orchestrator and API layers.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// NotAvailable marks a listing field the job source did not return.
// Listings never omit a field; consumers read every field unconditionally.
const NotAvailable = "N/A"

// JobListing is one normalized job posting.
type JobListing struct {
	ID           string `json:"id"`
	Site         string `json:"site"`
	JobURL       string `json:"job_url"`
	JobURLDirect string `json:"job_url_direct"`
	Title        string `json:"title"`
	Company      string `json:"company"`
	Location     string `json:"location"`
	DatePosted   string `json:"date_posted"`
	JobType      string `json:"job_type"`
	Description  string `json:"description"`
}

// OrNotAvailable returns the trimmed value, or NotAvailable when it is blank.
func OrNotAvailable(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return NotAvailable
	}
	return value
}

// IsAvailable reports whether a listing field holds a real value.
func IsAvailable(value string) bool {
	return value != "" && value != NotAvailable
}

// Headline returns the "title at company (location)" line shown above a draft.
func (l JobListing) Headline() string {
	return l.Title + " at " + l.Company + " (" + l.Location + ")"
}
