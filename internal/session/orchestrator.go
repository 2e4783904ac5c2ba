// Package session coordinates the search-then-draft workflow for a caller's session.
package session

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-finder/internal/types"
)

// Searcher returns a bounded listing page for a keyword search.
type Searcher interface {
	Search(ctx context.Context, keywords []string, location string) ([]types.JobListing, error)
}

// Drafter turns a listing and background text into a cover letter.
type Drafter interface {
	Draft(ctx context.Context, listing types.JobListing, background string) (string, error)
}

// Recorder receives search and draft outcomes for history.
type Recorder interface {
	RecordSearch(ctx context.Context, rec types.SearchRecord) error
	RecordDraft(ctx context.Context, rec types.DraftRecord) error
}

// Orchestrator delegates to the searcher and drafter and remembers each
// session's last listing set so a listing can be picked by id without
// searching again. Errors from the searcher and drafter pass through unchanged.
type Orchestrator struct {
	searcher Searcher
	drafter  Drafter
	store    Store
	recorder Recorder
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStore replaces the default in-memory store.
func WithStore(store Store) Option {
	return func(o *Orchestrator) { o.store = store }
}

// WithRecorder records every search and draft outcome.
func WithRecorder(recorder Recorder) Option {
	return func(o *Orchestrator) { o.recorder = recorder }
}

// NewOrchestrator creates an orchestrator with an in-memory store unless WithStore is given.
func NewOrchestrator(searcher Searcher, drafter Drafter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		searcher: searcher,
		drafter:  drafter,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.store == nil {
		o.store = NewMemoryStore(DefaultSessionTTL)
	}
	return o
}

// NewSession starts an empty session.
func (o *Orchestrator) NewSession(ctx context.Context) (uuid.UUID, error) {
	id := uuid.New()
	if err := o.store.Create(ctx, id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Search runs a search and, on success, replaces the session's listing set.
func (o *Orchestrator) Search(ctx context.Context, sessionID uuid.UUID, req types.SearchRequest) ([]types.JobListing, error) {
	if _, err := o.store.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	listings, err := o.searcher.Search(ctx, req.Keywords, req.Location)
	o.recordSearch(ctx, sessionID, req, len(listings), err)
	if err != nil {
		return nil, err
	}

	if err := o.store.SaveListings(ctx, sessionID, listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// Listings returns the session's current listing set.
func (o *Orchestrator) Listings(ctx context.Context, sessionID uuid.UUID) ([]types.JobListing, error) {
	sess, err := o.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Listings, nil
}

// Listing re-selects a listing from the session's current results.
func (o *Orchestrator) Listing(ctx context.Context, sessionID uuid.UUID, listingID string) (types.JobListing, error) {
	listings, err := o.Listings(ctx, sessionID)
	if err != nil {
		return types.JobListing{}, err
	}
	for _, l := range listings {
		if l.ID == listingID {
			return l, nil
		}
	}
	return types.JobListing{}, ErrListingNotFound
}

// DraftCoverLetter drafts a letter for a listing from the session's results.
// A blank background is rejected before the listing is looked up.
func (o *Orchestrator) DraftCoverLetter(ctx context.Context, sessionID uuid.UUID, listingID, background string) (string, error) {
	if err := types.ValidateBackground(background); err != nil {
		return "", err
	}

	listing, err := o.Listing(ctx, sessionID, listingID)
	if err != nil {
		return "", err
	}

	text, err := o.drafter.Draft(ctx, listing, background)
	o.recordDraft(ctx, sessionID, listing, background, text, err)
	return text, err
}

// DraftCoverLetterAsync runs DraftCoverLetter in its own goroutine and
// delivers exactly one result on a buffered channel.
func (o *Orchestrator) DraftCoverLetterAsync(ctx context.Context, sessionID uuid.UUID, listingID, background string) <-chan types.CoverLetterResult {
	out := make(chan types.CoverLetterResult, 1)
	go func() {
		defer close(out)
		text, err := o.DraftCoverLetter(ctx, sessionID, listingID, background)
		out <- types.CoverLetterResult{ListingID: listingID, Text: text, Err: err}
	}()
	return out
}

// Draft drafts a letter for a listing the caller already holds.
func (o *Orchestrator) Draft(ctx context.Context, listing types.JobListing, background string) (string, error) {
	return o.drafter.Draft(ctx, listing, background)
}

// HasRecorder reports whether outcomes are being recorded.
func (o *Orchestrator) HasRecorder() bool {
	return o.recorder != nil
}

func (o *Orchestrator) recordSearch(ctx context.Context, sessionID uuid.UUID, req types.SearchRequest, count int, searchErr error) {
	if o.recorder == nil {
		return
	}
	rec := types.SearchRecord{
		SessionID:    sessionID.String(),
		Keywords:     req.Keywords,
		Location:     req.Location,
		ListingCount: count,
		CreatedAt:    time.Now().UTC(),
	}
	if searchErr != nil {
		rec.Error = searchErr.Error()
	}
	if err := o.recorder.RecordSearch(context.WithoutCancel(ctx), rec); err != nil {
		log.Printf("[session] Failed to record search for %s: %v", sessionID, err)
	}
}

func (o *Orchestrator) recordDraft(ctx context.Context, sessionID uuid.UUID, listing types.JobListing, background, text string, draftErr error) {
	if o.recorder == nil {
		return
	}
	rec := types.DraftRecord{
		SessionID:   sessionID.String(),
		ListingID:   listing.ID,
		Title:       listing.Title,
		Company:     listing.Company,
		Background:  background,
		CoverLetter: text,
		CreatedAt:   time.Now().UTC(),
	}
	if draftErr != nil {
		rec.Error = draftErr.Error()
	}
	if err := o.recorder.RecordDraft(context.WithoutCancel(ctx), rec); err != nil {
		log.Printf("[session] Failed to record draft for %s: %v", sessionID, err)
	}
}
