package jobsource

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-finder/internal/fetch"
	"github.com/jonathan/career-finder/internal/types"
)

// Adapter defaults.
const (
	// DefaultMaxListings is the page size returned to callers. The source is
	// asked for more rows than this; only the first rows are kept.
	DefaultMaxListings   = 5
	DefaultResultsWanted = 20
	DefaultHoursOld      = 72
	DefaultTimeout       = 60 * time.Second
)

// Options configures an Adapter.
type Options struct {
	MaxListings   int
	ResultsWanted int
	HoursOld      int
	Boards        []string
	Timeout       time.Duration
}

// DefaultOptions returns the adapter defaults.
func DefaultOptions() Options {
	return Options{
		MaxListings:   DefaultMaxListings,
		ResultsWanted: DefaultResultsWanted,
		HoursOld:      DefaultHoursOld,
		Boards:        DefaultBoards(),
		Timeout:       DefaultTimeout,
	}
}

// withDefaults fills zero values from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxListings <= 0 {
		o.MaxListings = d.MaxListings
	}
	if o.ResultsWanted <= 0 {
		o.ResultsWanted = d.ResultsWanted
	}
	if o.HoursOld <= 0 {
		o.HoursOld = d.HoursOld
	}
	if len(o.Boards) == 0 {
		o.Boards = d.Boards
	}
	if o.Timeout <= 0 {
		o.Timeout = d.Timeout
	}
	return o
}

// Adapter turns a keyword search into a bounded, normalized listing page.
type Adapter struct {
	source Source
	opts   Options
}

// NewAdapter creates an adapter over source.
func NewAdapter(source Source, opts Options) *Adapter {
	return &Adapter{
		source: source,
		opts:   opts.withDefaults(),
	}
}

// Search validates the request, makes one source call, and returns at most
// MaxListings listings in source order. Zero rows is an empty result, not an error.
func (a *Adapter) Search(ctx context.Context, keywords []string, location string) ([]types.JobListing, error) {
	req := types.SearchRequest{Keywords: keywords, Location: location}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := a.Params(req)

	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	start := time.Now()
	table, err := a.scrape(ctx, params)
	if err != nil {
		log.Printf("[search] %q in %s failed after %v: %v", params.SearchTerm, location, time.Since(start), err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &SourceUnavailableError{
				Message: fmt.Sprintf("job search timed out after %v", a.opts.Timeout),
				Cause:   err,
			}
		}
		return nil, &SourceUnavailableError{Message: "job search failed", Cause: err}
	}

	n := min(len(table), a.opts.MaxListings)
	listings := make([]types.JobListing, 0, n)
	for _, row := range table[:n] {
		listings = append(listings, Project(row))
	}

	log.Printf("[search] %q in %s: %d row(s) from source, returning %d in %v",
		params.SearchTerm, location, len(table), len(listings), time.Since(start))

	return listings, nil
}

// Params builds the source call for a validated request.
func (a *Adapter) Params(req types.SearchRequest) ScrapeParams {
	term := req.Term()
	code, _ := types.CountryCode(req.Location)
	return ScrapeParams{
		SearchTerm:       term,
		GoogleSearchTerm: fmt.Sprintf("%s jobs near %s since yesterday", term, req.Location),
		Location:         req.Location,
		ResultsWanted:    a.opts.ResultsWanted,
		HoursOld:         a.opts.HoursOld,
		CountryCode:      code,
		Boards:           append([]string(nil), a.opts.Boards...),
	}
}

// scrape calls the source and converts a panic into an error.
func (a *Adapter) scrape(ctx context.Context, params ScrapeParams) (table Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			table = nil
			err = fmt.Errorf("job source panicked: %v", r)
		}
	}()
	return a.source.Scrape(ctx, params)
}

// Project maps a raw row onto the listing field set. Blank or missing cells
// become types.NotAvailable. A row without an id gets a name-based UUID so
// repeated searches agree on identity.
func Project(row Row) types.JobListing {
	cell := func(col string) string {
		return types.OrNotAvailable(row[col])
	}

	jobURL := cell(ColJobURL)

	site := cell(ColSite)
	if !types.IsAvailable(site) && types.IsAvailable(jobURL) {
		if board := fetch.DetectBoard(jobURL); board != fetch.BoardUnknown {
			site = string(board)
		}
	}

	listing := types.JobListing{
		ID:           cell(ColID),
		Site:         site,
		JobURL:       jobURL,
		JobURLDirect: cell(ColJobURLDirect),
		Title:        cell(ColTitle),
		Company:      cell(ColCompany),
		Location:     cell(ColLocation),
		DatePosted:   cell(ColDatePosted),
		JobType:      cell(ColJobType),
		Description:  cell(ColDescription),
	}
	if !types.IsAvailable(listing.ID) {
		listing.ID = fallbackID(listing)
	}
	return listing
}

// fallbackID derives a name-based UUID for a row without a board id: from
// site|job_url when there is a URL, otherwise from the listing content.
func fallbackID(l types.JobListing) string {
	name := l.Site + "|" + l.JobURL
	if !types.IsAvailable(l.JobURL) {
		name = strings.Join([]string{l.Site, l.Title, l.Company, l.Location, l.DatePosted, l.Description}, "|")
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
