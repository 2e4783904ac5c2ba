// Package coverletter drafts cover letters tailored to a job listing from the
// applicant's own background text.
package coverletter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/career-finder/internal/llm"
	"github.com/jonathan/career-finder/internal/prompts"
	"github.com/jonathan/career-finder/internal/types"
)

// DefaultTimeout bounds one drafting call.
const DefaultTimeout = 120 * time.Second

const promptFile = "cover_letter.json"

// promptKeys are the message parts, in the order they are sent.
var promptKeys = []string{"instruction", "job_description", "background"}

// Options configures a Drafter.
type Options struct {
	Timeout time.Duration
}

// Drafter turns a listing and background text into a cover letter with one
// text-generation request.
type Drafter struct {
	client  llm.Client
	timeout time.Duration
}

// NewDrafter creates a drafter backed by client.
func NewDrafter(client llm.Client, opts Options) *Drafter {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Drafter{client: client, timeout: timeout}
}

// BuildPrompt renders the instruction, job and background parts.
func BuildPrompt(listing types.JobListing, background string) ([]string, error) {
	return prompts.Parts(promptFile, promptKeys, map[string]string{
		"Title":       types.OrNotAvailable(listing.Title),
		"Company":     types.OrNotAvailable(listing.Company),
		"Location":    types.OrNotAvailable(listing.Location),
		"Description": types.OrNotAvailable(listing.Description),
		"Background":  background,
	})
}

// Draft returns the generated letter verbatim. A blank background fails with
// *types.ValidationError before any remote call; every generation failure is a
// *DraftUnavailableError.
func (d *Drafter) Draft(ctx context.Context, listing types.JobListing, background string) (string, error) {
	if err := types.ValidateBackground(background); err != nil {
		return "", err
	}

	parts, err := BuildPrompt(listing, background)
	if err != nil {
		return "", &DraftUnavailableError{Message: "cover letter prompt could not be built", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	text, err := d.generate(ctx, parts)
	if err != nil {
		log.Printf("[draft] %s failed after %v: %v", listing.ID, time.Since(start), err)
		return "", d.unavailable(err)
	}

	log.Printf("[draft] %s: %d chars from %s in %v", listing.ID, len(text), d.client.Model(), time.Since(start))
	return text, nil
}

// DraftAsync runs Draft in its own goroutine. The channel receives exactly one
// result and is then closed; it is buffered so an abandoned caller does not
// leak the goroutine.
func (d *Drafter) DraftAsync(ctx context.Context, listing types.JobListing, background string) <-chan types.CoverLetterResult {
	out := make(chan types.CoverLetterResult, 1)
	go func() {
		defer close(out)
		text, err := d.Draft(ctx, listing, background)
		out <- types.CoverLetterResult{ListingID: listing.ID, Text: text, Err: err}
	}()
	return out
}

// generate calls the client and converts a panic into an error.
func (d *Drafter) generate(ctx context.Context, parts []string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("text generation panicked: %v", r)
		}
	}()
	return d.client.GenerateContent(ctx, parts)
}

func (d *Drafter) unavailable(err error) *DraftUnavailableError {
	var statusErr *llm.StatusError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &DraftUnavailableError{Message: fmt.Sprintf("cover letter generation timed out after %v", d.timeout), Cause: err}
	case errors.Is(err, context.Canceled):
		return &DraftUnavailableError{Message: "cover letter generation was cancelled", Cause: err}
	case errors.As(err, &statusErr):
		return &DraftUnavailableError{Message: fmt.Sprintf("text generation service returned status %d", statusErr.StatusCode), Cause: err}
	case errors.Is(err, llm.ErrEmptyCompletion):
		return &DraftUnavailableError{Message: "text generation service returned an empty letter", Cause: err}
	default:
		return &DraftUnavailableError{Message: "text generation failed", Cause: err}
	}
}
