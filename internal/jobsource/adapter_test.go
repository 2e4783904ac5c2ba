package jobsource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-finder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource returns a fixed table and counts calls.
type stubSource struct {
	table  Table
	err    error
	calls  atomic.Int32
	params ScrapeParams
}

func (s *stubSource) Scrape(_ context.Context, params ScrapeParams) (Table, error) {
	s.calls.Add(1)
	s.params = params
	if s.err != nil {
		return nil, s.err
	}
	// hand out copies so callers cannot mutate the fixture
	out := make(Table, len(s.table))
	for i, row := range s.table {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out[i] = cp
	}
	return out, nil
}

func sevenRows() Table {
	var table Table
	for i := 1; i <= 7; i++ {
		table = append(table, Row{
			ColID:          fmt.Sprintf("li-%d", i),
			ColSite:        "linkedin",
			ColJobURL:      fmt.Sprintf("https://www.linkedin.com/jobs/view/%d", i),
			ColTitle:       fmt.Sprintf("Backend Engineer %d", i),
			ColCompany:     fmt.Sprintf("Company %d", i),
			ColLocation:    "Berlin, Germany",
			ColDatePosted:  "2026-10-15",
			ColJobType:     "fulltime",
			ColDescription: "Build Python services.",
			"salary_min":   "60000",
		})
	}
	return table
}

func TestSearch_ReturnsFirstFiveListings(t *testing.T) {
	source := &stubSource{table: sevenRows()}
	adapter := NewAdapter(source, DefaultOptions())

	listings, err := adapter.Search(context.Background(), []string{"python", "backend"}, "Germany")
	require.NoError(t, err)
	require.Len(t, listings, 5)

	for i, l := range listings {
		assert.Equal(t, fmt.Sprintf("li-%d", i+1), l.ID)
		assert.True(t, types.IsAvailable(l.Title))
		assert.True(t, types.IsAvailable(l.Company))
		assert.True(t, types.IsAvailable(l.Location))
		assert.Equal(t, types.NotAvailable, l.JobURLDirect)
	}
	assert.Equal(t, int32(1), source.calls.Load())
}

func TestSearch_BuildsSourceParams(t *testing.T) {
	source := &stubSource{table: Table{}}
	adapter := NewAdapter(source, DefaultOptions())

	_, err := adapter.Search(context.Background(), []string{"python", "backend"}, "Germany")
	require.NoError(t, err)

	p := source.params
	assert.Equal(t, "python, backend", p.SearchTerm)
	assert.Equal(t, "python, backend jobs near Germany since yesterday", p.GoogleSearchTerm)
	assert.Equal(t, "Germany", p.Location)
	assert.Equal(t, 20, p.ResultsWanted)
	assert.Equal(t, 72, p.HoursOld)
	assert.Equal(t, "DE", p.CountryCode)
	assert.Equal(t, []string{"indeed", "linkedin", "google"}, p.Boards)
}

func TestSearch_ValidationFailsBeforeSourceCall(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		location string
	}{
		{"nil keywords", nil, "Germany"},
		{"empty keywords", []string{}, "Germany"},
		{"blank keyword", []string{"  "}, "Germany"},
		{"unset location", []string{"python"}, types.UnsetLocation},
		{"empty location", []string{"python"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &stubSource{table: sevenRows()}
			adapter := NewAdapter(source, DefaultOptions())

			listings, err := adapter.Search(context.Background(), tt.keywords, tt.location)
			assert.Nil(t, listings)

			var verr *types.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, int32(0), source.calls.Load(), "source must not be called")
		})
	}
}

func TestSearch_ZeroRowsIsEmptyNotError(t *testing.T) {
	adapter := NewAdapter(&stubSource{table: Table{}}, DefaultOptions())

	listings, err := adapter.Search(context.Background(), []string{"cobol"}, "Austria")
	require.NoError(t, err)
	assert.NotNil(t, listings)
	assert.Empty(t, listings)
}

func TestSearch_SourceErrorIsSourceUnavailable(t *testing.T) {
	cause := errors.New("429 too many requests")
	adapter := NewAdapter(&stubSource{err: cause}, DefaultOptions())

	_, err := adapter.Search(context.Background(), []string{"go"}, "USA")

	var srcErr *SourceUnavailableError
	require.ErrorAs(t, err, &srcErr)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "429 too many requests")
}

func TestSearch_SourcePanicIsSourceUnavailable(t *testing.T) {
	source := SourceFunc(func(context.Context, ScrapeParams) (Table, error) {
		panic("malformed frame")
	})
	adapter := NewAdapter(source, DefaultOptions())

	_, err := adapter.Search(context.Background(), []string{"go"}, "USA")

	var srcErr *SourceUnavailableError
	require.ErrorAs(t, err, &srcErr)
	assert.Contains(t, err.Error(), "malformed frame")
}

func TestSearch_TimeoutIsSourceUnavailable(t *testing.T) {
	source := SourceFunc(func(ctx context.Context, _ ScrapeParams) (Table, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	opts := DefaultOptions()
	opts.Timeout = 20 * time.Millisecond
	adapter := NewAdapter(source, opts)

	_, err := adapter.Search(context.Background(), []string{"go"}, "UK")

	var srcErr *SourceUnavailableError
	require.ErrorAs(t, err, &srcErr)
	assert.Contains(t, srcErr.Message, "timed out")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSearch_Idempotent(t *testing.T) {
	source := &stubSource{table: sevenRows()}
	adapter := NewAdapter(source, DefaultOptions())

	first, err := adapter.Search(context.Background(), []string{"python"}, "Canada")
	require.NoError(t, err)
	second, err := adapter.Search(context.Background(), []string{"python"}, "Canada")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSearch_MaxListingsOption(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxListings = 7
	adapter := NewAdapter(&stubSource{table: sevenRows()}, opts)

	listings, err := adapter.Search(context.Background(), []string{"python"}, "Switzerland")
	require.NoError(t, err)
	assert.Len(t, listings, 7)
}

func TestProject_MissingFieldsUseMarker(t *testing.T) {
	l := Project(Row{ColTitle: "Data Engineer", ColCompany: "  "})

	assert.Equal(t, "Data Engineer", l.Title)
	assert.Equal(t, types.NotAvailable, l.Company)
	assert.NotEqual(t, types.NotAvailable, l.ID, "id is derived from content")
	assert.Equal(t, types.NotAvailable, l.Site)
	assert.Equal(t, types.NotAvailable, l.JobURL)
	assert.Equal(t, types.NotAvailable, l.JobURLDirect)
	assert.Equal(t, types.NotAvailable, l.Location)
	assert.Equal(t, types.NotAvailable, l.DatePosted)
	assert.Equal(t, types.NotAvailable, l.JobType)
	assert.Equal(t, types.NotAvailable, l.Description)
}

func TestProject_NilRow(t *testing.T) {
	assert.NotPanics(t, func() {
		l := Project(nil)
		assert.Equal(t, types.NotAvailable, l.Title)
	})
}

func TestProject_DerivesIDAndSiteFromURL(t *testing.T) {
	row := Row{ColJobURL: "https://de.indeed.com/viewjob?jk=abc", ColTitle: "SRE"}

	first := Project(row)
	second := Project(row)

	assert.Equal(t, "indeed", first.Site)
	assert.NotEqual(t, types.NotAvailable, first.ID)
	assert.Equal(t, first.ID, second.ID)

	other := Project(Row{ColJobURL: "https://de.indeed.com/viewjob?jk=def"})
	assert.NotEqual(t, first.ID, other.ID)

	want := uuid.NewSHA1(uuid.NameSpaceURL, []byte("indeed|https://de.indeed.com/viewjob?jk=abc")).String()
	assert.Equal(t, want, first.ID, "UUIDv5 over site|job_url")
}

func TestProject_RowsWithoutURLGetDistinctIDs(t *testing.T) {
	rows := []Row{
		{ColSite: "google", ColTitle: "Go Engineer", ColCompany: "Acme", ColLocation: "Berlin"},
		{ColSite: "google", ColTitle: "Go Engineer", ColCompany: "Globex", ColLocation: "Berlin"},
		{ColSite: "google", ColTitle: "SRE", ColCompany: "Acme", ColLocation: "Berlin"},
	}

	seen := make(map[string]bool)
	for _, row := range rows {
		l := Project(row)
		assert.NotEqual(t, types.NotAvailable, l.ID)
		assert.False(t, seen[l.ID], "duplicate id %s", l.ID)
		seen[l.ID] = true
		assert.Equal(t, l.ID, Project(row).ID, "stable across searches")
	}
}

func TestProject_BoardIDWins(t *testing.T) {
	l := Project(Row{ColID: "li-4023", ColJobURL: "https://www.linkedin.com/jobs/view/4023"})
	assert.Equal(t, "li-4023", l.ID)
}

func TestNewAdapter_FillsDefaults(t *testing.T) {
	a := NewAdapter(&stubSource{}, Options{})
	assert.Equal(t, DefaultMaxListings, a.opts.MaxListings)
	assert.Equal(t, DefaultResultsWanted, a.opts.ResultsWanted)
	assert.Equal(t, DefaultHoursOld, a.opts.HoursOld)
	assert.Equal(t, DefaultTimeout, a.opts.Timeout)
	assert.Equal(t, DefaultBoards(), a.opts.Boards)
}
