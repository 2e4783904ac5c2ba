// Package jobsource retrieves job postings from job boards and normalizes them into listings.
package jobsource

import (
	"context"

	"github.com/jonathan/career-finder/internal/fetch"
)

// Column names a scrape result row may carry.
const (
	ColID           = "id"
	ColSite         = "site"
	ColJobURL       = "job_url"
	ColJobURLDirect = "job_url_direct"
	ColTitle        = "title"
	ColCompany      = "company"
	ColLocation     = "location"
	ColDatePosted   = "date_posted"
	ColJobType      = "job_type"
	ColDescription  = "description"
)

// Row is one scraped posting keyed by column name. Rows may carry extra
// columns or lack any of the known ones.
type Row map[string]string

// Table is an ordered scrape result.
type Table []Row

// ScrapeParams is a single scrape call across one or more boards.
type ScrapeParams struct {
	SearchTerm       string
	GoogleSearchTerm string
	Location         string
	ResultsWanted    int
	HoursOld         int
	CountryCode      string
	Boards           []string
}

// Source is an external aggregation call returning raw postings from multiple boards.
type Source interface {
	Scrape(ctx context.Context, params ScrapeParams) (Table, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, params ScrapeParams) (Table, error)

// Scrape calls f.
func (f SourceFunc) Scrape(ctx context.Context, params ScrapeParams) (Table, error) {
	return f(ctx, params)
}

// DefaultBoards are queried when no boards are configured.
// Adzuna is opt-in because it needs API credentials.
func DefaultBoards() []string {
	return []string{
		string(fetch.BoardIndeed),
		string(fetch.BoardLinkedIn),
		string(fetch.BoardGoogle),
	}
}
