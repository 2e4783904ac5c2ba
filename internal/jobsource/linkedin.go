package jobsource

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/career-finder/internal/fetch"
)

const (
	linkedInBaseURL  = "https://www.linkedin.com"
	linkedInPageSize = 10
	linkedInMaxPages = 5
)

// LinkedInBoard scrapes LinkedIn's public guest job search.
type LinkedInBoard struct {
	BaseURL string
	Options *fetch.Options
	// FetchDescriptions loads the posting page for the first DescriptionLimit
	// cards to fill description and job type.
	FetchDescriptions bool
	DescriptionLimit  int
}

// NewLinkedInBoard creates a LinkedIn board against linkedin.com.
func NewLinkedInBoard() *LinkedInBoard {
	return &LinkedInBoard{
		BaseURL:           linkedInBaseURL,
		Options:           fetch.DefaultOptions(),
		FetchDescriptions: true,
		DescriptionLimit:  DefaultMaxListings,
	}
}

// Name implements Board.
func (b *LinkedInBoard) Name() string { return string(fetch.BoardLinkedIn) }

// Scrape implements Board.
func (b *LinkedInBoard) Scrape(ctx context.Context, params ScrapeParams) (Table, error) {
	want := params.ResultsWanted
	if want <= 0 {
		want = DefaultResultsWanted
	}

	var table Table
	for page := 0; page < linkedInMaxPages && len(table) < want; page++ {
		reqURL, err := fetch.BuildURL(b.BaseURL+"/jobs-guest/jobs/api/seeMoreJobPostings/search", map[string]string{
			"keywords": params.SearchTerm,
			"location": params.Location,
			"f_TPR":    linkedInRecency(params.HoursOld),
			"start":    strconv.Itoa(page * linkedInPageSize),
		})
		if err != nil {
			return table, err
		}

		doc, err := fetch.Document(ctx, reqURL, b.Options)
		if err != nil {
			if page > 0 && len(table) > 0 {
				break
			}
			return nil, err
		}

		rows := parseLinkedInCards(doc)
		if len(rows) == 0 {
			break
		}
		table = append(table, rows...)
	}

	if len(table) > want {
		table = table[:want]
	}

	if b.FetchDescriptions {
		limit := min(len(table), b.DescriptionLimit)
		for _, row := range table[:limit] {
			b.fillDetails(ctx, row)
		}
	}

	return table, nil
}

// parseLinkedInCards extracts one row per job card.
func parseLinkedInCards(doc *goquery.Document) Table {
	var table Table
	doc.Find("div.base-search-card").Each(func(_ int, card *goquery.Selection) {
		urn, _ := card.Attr("data-entity-urn")
		jobID := urn[strings.LastIndex(urn, ":")+1:]

		link := fetch.Attr(card, "a.base-card__full-link", "href")
		if i := strings.Index(link, "?"); i >= 0 {
			link = link[:i]
		}

		row := Row{
			ColSite:       string(fetch.BoardLinkedIn),
			ColJobURL:     link,
			ColTitle:      fetch.Text(card, "h3.base-search-card__title"),
			ColCompany:    fetch.Text(card, "h4.base-search-card__subtitle"),
			ColLocation:   fetch.Text(card, "span.job-search-card__location"),
			ColDatePosted: fetch.Attr(card, "time", "datetime"),
		}
		if jobID != "" {
			row[ColID] = fetch.BoardLinkedIn.IDPrefix() + "-" + jobID
			if link == "" {
				row[ColJobURL] = fmt.Sprintf("%s/jobs/view/%s", linkedInBaseURL, jobID)
			}
		}
		table = append(table, row)
	})
	return table
}

// fillDetails loads the guest posting page. Failures leave the row unchanged.
func (b *LinkedInBoard) fillDetails(ctx context.Context, row Row) {
	jobID := strings.TrimPrefix(row[ColID], fetch.BoardLinkedIn.IDPrefix()+"-")
	if jobID == "" || jobID == row[ColID] {
		return
	}

	doc, err := fetch.Document(ctx, b.BaseURL+"/jobs-guest/jobs/api/jobPosting/"+jobID, b.Options)
	if err != nil {
		return
	}

	markup := doc.Find("div.show-more-less-html__markup").First()
	markup.Find("br").ReplaceWithHtml("\n")
	markup.Find("li, p").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	if desc := fetch.CleanMultiline(markup.Text()); desc != "" {
		row[ColDescription] = desc
	}

	doc.Find("li.description__job-criteria-item").Each(func(_ int, item *goquery.Selection) {
		header := strings.ToLower(fetch.Text(item, "h3"))
		if strings.Contains(header, "employment type") {
			row[ColJobType] = strings.ToLower(fetch.Text(item, "span"))
		}
	})

	if raw, err := doc.Find("code#applyUrl").Html(); err == nil {
		if direct := linkedInApplyURL(raw); direct != "" {
			row[ColJobURLDirect] = direct
		}
	}
}

// linkedInApplyURL extracts the offsite apply URL LinkedIn embeds as a quoted
// string inside an HTML comment.
func linkedInApplyURL(raw string) string {
	start := strings.Index(raw, `"`)
	end := strings.LastIndex(raw, `"`)
	if start < 0 || end <= start {
		return ""
	}
	candidate := raw[start+1 : end]
	if u, err := url.Parse(candidate); err == nil {
		if target := u.Query().Get("url"); target != "" {
			candidate = target
		}
	}
	if !strings.HasPrefix(candidate, "http") {
		return ""
	}
	return candidate
}

// linkedInRecency renders the time-posted filter, e.g. r259200 for 72 hours.
func linkedInRecency(hours int) string {
	if hours <= 0 {
		return ""
	}
	return "r" + strconv.Itoa(hours*3600)
}
