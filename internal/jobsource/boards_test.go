package jobsource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonathan/career-finder/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const linkedInSearchHTML = `
<ul>
  <li>
    <div class="base-card base-search-card" data-entity-urn="urn:li:jobPosting:4001">
      <a class="base-card__full-link" href="https://de.linkedin.com/jobs/view/backend-engineer-4001?refId=abc">x</a>
      <h3 class="base-search-card__title">
        Backend Engineer
      </h3>
      <h4 class="base-search-card__subtitle"><a>Acme GmbH</a></h4>
      <span class="job-search-card__location">Berlin, Germany</span>
      <time class="job-search-card__listdate" datetime="2026-10-14">2 days ago</time>
    </div>
  </li>
  <li>
    <div class="base-card base-search-card" data-entity-urn="urn:li:jobPosting:4002">
      <h3 class="base-search-card__title">Python Developer</h3>
      <h4 class="base-search-card__subtitle">Globex</h4>
      <span class="job-search-card__location">Munich, Germany</span>
    </div>
  </li>
</ul>`

const linkedInPostingHTML = `
<section>
  <div class="show-more-less-html__markup">
    <p>We build APIs.</p>
    <ul><li>Go</li><li>Python</li></ul>
  </div>
  <ul>
    <li class="description__job-criteria-item">
      <h3>Seniority level</h3><span>Mid-Senior level</span>
    </li>
    <li class="description__job-criteria-item">
      <h3>Employment type</h3><span>Full-time</span>
    </li>
  </ul>
  <code id="applyUrl" style="display: none"><!--"https://www.linkedin.com/jobs/view/externalApply/4001?url=https%3A%2F%2Fcareers%2Eacme%2Ecom%2Fjobs%2F1&urlHash=x"--></code>
</section>`

func TestLinkedInBoard_Scrape(t *testing.T) {
	var searchCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs-guest/jobs/api/seeMoreJobPostings/search", func(w http.ResponseWriter, r *http.Request) {
		searchCalls++
		assert.Equal(t, "python, backend", r.URL.Query().Get("keywords"))
		assert.Equal(t, "Germany", r.URL.Query().Get("location"))
		assert.Equal(t, "r259200", r.URL.Query().Get("f_TPR"))
		if r.URL.Query().Get("start") != "0" {
			return
		}
		_, _ = fmt.Fprint(w, linkedInSearchHTML)
	})
	mux.HandleFunc("/jobs-guest/jobs/api/jobPosting/4001", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, linkedInPostingHTML)
	})
	mux.HandleFunc("/jobs-guest/jobs/api/jobPosting/4002", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	board := NewLinkedInBoard()
	board.BaseURL = srv.URL

	table, err := board.Scrape(context.Background(), ScrapeParams{
		SearchTerm:    "python, backend",
		Location:      "Germany",
		ResultsWanted: 20,
		HoursOld:      72,
	})
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, 2, searchCalls, "stops at the first empty page")

	first := table[0]
	assert.Equal(t, "li-4001", first[ColID])
	assert.Equal(t, "https://de.linkedin.com/jobs/view/backend-engineer-4001", first[ColJobURL])
	assert.Equal(t, "Backend Engineer", first[ColTitle])
	assert.Equal(t, "Acme GmbH", first[ColCompany])
	assert.Equal(t, "Berlin, Germany", first[ColLocation])
	assert.Equal(t, "2026-10-14", first[ColDatePosted])
	assert.Equal(t, "full-time", first[ColJobType])
	assert.Equal(t, "https://careers.acme.com/jobs/1", first[ColJobURLDirect])
	assert.Contains(t, first[ColDescription], "We build APIs.")
	assert.Contains(t, first[ColDescription], "Python")

	second := table[1]
	assert.Equal(t, "li-4002", second[ColID])
	assert.Equal(t, "https://www.linkedin.com/jobs/view/4002", second[ColJobURL])
	assert.Empty(t, second[ColDescription], "failed detail fetch leaves the row as is")
}

func TestLinkedInBoard_FirstPageErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	board := NewLinkedInBoard()
	board.BaseURL = srv.URL

	_, err := board.Scrape(context.Background(), ScrapeParams{SearchTerm: "go"})

	var fetchErr *fetch.Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusTooManyRequests, fetchErr.StatusCode)
}

func TestLinkedInApplyURL(t *testing.T) {
	assert.Equal(t, "https://jobs.example.com/1", linkedInApplyURL(`<!--"https://jobs.example.com/1"-->`))
	assert.Empty(t, linkedInApplyURL(`<!-- -->`))
	assert.Empty(t, linkedInApplyURL(`<!--"/relative"-->`))
}

func TestLinkedInRecency(t *testing.T) {
	assert.Equal(t, "r259200", linkedInRecency(72))
	assert.Equal(t, "", linkedInRecency(0))
}

const indeedSearchHTML = `
<div id="mosaic-provider-jobcards">
  <div class="job_seen_beacon">
    <h2 class="jobTitle"><a data-jk="a1b2c3"><span title="Senior Go Engineer">Senior Go Engineer</span></a></h2>
    <span data-testid="company-name">Initech</span>
    <div data-testid="text-location">Zürich</div>
    <span class="date">Posted1 day ago</span>
    <div class="job-snippet"><ul><li>Design distributed systems</li></ul></div>
    <div data-testid="attribute_snippet_testid">CHF 120,000 a year</div>
    <div data-testid="attribute_snippet_testid">Full-time</div>
  </div>
  <div class="job_seen_beacon">
    <h2 class="jobTitle">Data Analyst</h2>
  </div>
</div>`

func TestIndeedBoard_Scrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs", r.URL.Path)
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		assert.Equal(t, "3", r.URL.Query().Get("fromage"))
		if r.URL.Query().Get("start") != "0" {
			_, _ = fmt.Fprint(w, "<html></html>")
			return
		}
		_, _ = fmt.Fprint(w, indeedSearchHTML)
	}))
	defer srv.Close()

	board := NewIndeedBoard(nil)
	board.BaseURL = srv.URL

	table, err := board.Scrape(context.Background(), ScrapeParams{
		SearchTerm:  "golang",
		Location:    "Switzerland",
		HoursOld:    72,
		CountryCode: "CH",
	})
	require.NoError(t, err)
	require.Len(t, table, 2)

	first := table[0]
	assert.Equal(t, "in-a1b2c3", first[ColID])
	assert.Equal(t, srv.URL+"/viewjob?jk=a1b2c3", first[ColJobURL])
	assert.Equal(t, "Senior Go Engineer", first[ColTitle])
	assert.Equal(t, "Initech", first[ColCompany])
	assert.Equal(t, "Zürich", first[ColLocation])
	assert.Equal(t, "1 day ago", first[ColDatePosted])
	assert.Equal(t, "full-time", first[ColJobType])
	assert.Equal(t, "Design distributed systems", first[ColDescription])

	second := table[1]
	assert.Equal(t, "Data Analyst", second[ColTitle])
	assert.Empty(t, second[ColID])
	assert.Empty(t, second[ColCompany])
}

func TestIndeedBoard_UsesRenderer(t *testing.T) {
	renderer := &stubRenderer{html: indeedSearchHTML}
	board := NewIndeedBoard(renderer)
	board.BaseURL = "https://de.indeed.com"

	table, err := board.Scrape(context.Background(), ScrapeParams{SearchTerm: "go", ResultsWanted: 1})
	require.NoError(t, err)
	require.Len(t, table, 1)
	require.NotEmpty(t, renderer.urls)
	assert.True(t, strings.HasPrefix(renderer.urls[0], "https://de.indeed.com/jobs?"))
}

func TestIndeedDays(t *testing.T) {
	assert.Equal(t, "3", indeedDays(72))
	assert.Equal(t, "1", indeedDays(5))
	assert.Equal(t, "2", indeedDays(25))
	assert.Equal(t, "", indeedDays(0))
}

const adzunaResponseJSON = `{
  "count": 2,
  "results": [
    {
      "id": "5001",
      "title": "Platform Engineer",
      "description": "Kubernetes and Go.",
      "company": {"display_name": "Umbrella"},
      "location": {"display_name": "Toronto, Ontario"},
      "redirect_url": "https://www.adzuna.ca/land/ad/5001",
      "created": "2026-10-13T08:15:00Z",
      "contract_time": "full_time",
      "contract_type": "permanent"
    },
    {
      "id": "5002",
      "title": "QA Engineer",
      "company": {},
      "location": {"display_name": "Ottawa"},
      "redirect_url": "https://www.adzuna.ca/land/ad/5002",
      "created": "2026-10-12T10:00:00Z"
    }
  ]
}`

func TestAdzunaBoard_Scrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ca/search/1", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "id", q.Get("app_id"))
		assert.Equal(t, "key", q.Get("app_key"))
		assert.Equal(t, "platform", q.Get("what"))
		assert.Equal(t, "3", q.Get("max_days_old"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, adzunaResponseJSON)
	}))
	defer srv.Close()

	board := NewAdzunaBoard("id", "key")
	board.BaseURL = srv.URL

	table, err := board.Scrape(context.Background(), ScrapeParams{SearchTerm: "platform", HoursOld: 72, CountryCode: "CA"})
	require.NoError(t, err)
	require.Len(t, table, 2)

	assert.Equal(t, "az-5001", table[0][ColID])
	assert.Equal(t, "Umbrella", table[0][ColCompany])
	assert.Equal(t, "2026-10-13", table[0][ColDatePosted])
	assert.Equal(t, "fulltime, permanent", table[0][ColJobType])
	assert.Equal(t, "adzuna", table[0][ColSite])

	assert.Empty(t, table[1][ColCompany])
	assert.Empty(t, table[1][ColJobType])
}

func TestAdzunaBoard_NoCredentials(t *testing.T) {
	board := NewAdzunaBoard("", "")
	board.BaseURL = "http://127.0.0.1:0"

	table, err := board.Scrape(context.Background(), ScrapeParams{SearchTerm: "go"})
	require.NoError(t, err)
	assert.NotNil(t, table)
	assert.Empty(t, table)
}

func TestAdzunaCountry(t *testing.T) {
	assert.Equal(t, "gb", adzunaCountry("GB"))
	assert.Equal(t, "us", adzunaCountry(""))
}

// stubRenderer returns canned HTML and records requested URLs.
type stubRenderer struct {
	html string
	err  error
	urls []string
}

func (r *stubRenderer) Render(_ context.Context, url string) (string, error) {
	r.urls = append(r.urls, url)
	return r.html, r.err
}

const googleJobsHTML = `
<div>
  <div class="PwjeAc">
    <div class="BjJfJf">Site Reliability Engineer</div>
    <div class="vNEEBe">Hooli</div>
    <div class="Qk80Jf">Vienna, Austria</div>
    <span class="LL4CDc">3 hours ago</span>
    <span class="RcZtZb">Full-time</span>
    <a href="https://careers.hooli.com/sre">Apply</a>
  </div>
  <div class="PwjeAc">
    <div class="vNEEBe">No title card</div>
  </div>
</div>`

func TestGoogleBoard_Scrape(t *testing.T) {
	renderer := &stubRenderer{html: googleJobsHTML}
	board := NewGoogleBoard(renderer)

	table, err := board.Scrape(context.Background(), ScrapeParams{
		SearchTerm:       "sre",
		GoogleSearchTerm: "sre jobs near Austria since yesterday",
		CountryCode:      "AT",
	})
	require.NoError(t, err)
	require.Len(t, table, 1)

	row := table[0]
	assert.Equal(t, "Site Reliability Engineer", row[ColTitle])
	assert.Equal(t, "Hooli", row[ColCompany])
	assert.Equal(t, "Vienna, Austria", row[ColLocation])
	assert.Equal(t, "full-time", row[ColJobType])
	assert.Equal(t, "https://careers.hooli.com/sre", row[ColJobURL])
	assert.True(t, strings.HasPrefix(row[ColID], "go-"))
	assert.Equal(t, row[ColID], "go-"+googleJobID(row))

	require.Len(t, renderer.urls, 1)
	assert.Contains(t, renderer.urls[0], "q=sre+jobs+near+Austria+since+yesterday")
	assert.Contains(t, renderer.urls[0], "gl=at")
}

func TestGoogleBoard_RequiresRenderer(t *testing.T) {
	board := NewGoogleBoard(nil)
	_, err := board.Scrape(context.Background(), ScrapeParams{SearchTerm: "go"})
	require.Error(t, err)
}

func TestGoogleBoard_RenderError(t *testing.T) {
	cause := errors.New("chrome not found")
	board := NewGoogleBoard(&stubRenderer{err: cause})
	_, err := board.Scrape(context.Background(), ScrapeParams{SearchTerm: "go"})
	assert.ErrorIs(t, err, cause)
}
