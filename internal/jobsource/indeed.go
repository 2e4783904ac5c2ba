package jobsource

import (
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/career-finder/internal/fetch"
)

const (
	indeedPageSize = 10
	indeedMaxPages = 3
)

// knownJobTypes are matched against Indeed's metadata chips.
var knownJobTypes = []string{"full-time", "part-time", "contract", "temporary", "internship", "fulltime", "parttime"}

// IndeedBoard scrapes the country-specific Indeed search results page.
type IndeedBoard struct {
	// BaseURL overrides the country host, mainly for tests.
	BaseURL string
	Options *fetch.Options
	// Renderer, when set, renders pages in a browser instead of plain HTTP.
	// Indeed frequently serves a bot check to plain clients.
	Renderer fetch.Renderer
}

// NewIndeedBoard creates an Indeed board. renderer may be nil.
func NewIndeedBoard(renderer fetch.Renderer) *IndeedBoard {
	return &IndeedBoard{
		Options:  fetch.DefaultOptions(),
		Renderer: renderer,
	}
}

// Name implements Board.
func (b *IndeedBoard) Name() string { return string(fetch.BoardIndeed) }

func (b *IndeedBoard) baseURL(countryCode string) string {
	if b.BaseURL != "" {
		return strings.TrimSuffix(b.BaseURL, "/")
	}
	return "https://" + fetch.IndeedHost(countryCode)
}

// Scrape implements Board.
func (b *IndeedBoard) Scrape(ctx context.Context, params ScrapeParams) (Table, error) {
	want := params.ResultsWanted
	if want <= 0 {
		want = DefaultResultsWanted
	}
	base := b.baseURL(params.CountryCode)

	var table Table
	for page := 0; page < indeedMaxPages && len(table) < want; page++ {
		reqURL, err := fetch.BuildURL(base+"/jobs", map[string]string{
			"q":       params.SearchTerm,
			"l":       params.Location,
			"fromage": indeedDays(params.HoursOld),
			"sort":    "date",
			"start":   strconv.Itoa(page * indeedPageSize),
		})
		if err != nil {
			return table, err
		}

		doc, err := b.document(ctx, reqURL)
		if err != nil {
			if len(table) > 0 {
				break
			}
			return nil, err
		}

		rows := parseIndeedCards(doc, base)
		if len(rows) == 0 {
			break
		}
		table = append(table, rows...)
	}

	if len(table) > want {
		table = table[:want]
	}
	return table, nil
}

func (b *IndeedBoard) document(ctx context.Context, reqURL string) (*goquery.Document, error) {
	if b.Renderer != nil {
		html, err := b.Renderer.Render(ctx, reqURL)
		if err != nil {
			return nil, err
		}
		return fetch.ParseHTML(html)
	}
	return fetch.Document(ctx, reqURL, b.Options)
}

// parseIndeedCards extracts one row per result card.
func parseIndeedCards(doc *goquery.Document, base string) Table {
	var table Table
	doc.Find("div.job_seen_beacon").Each(func(_ int, card *goquery.Selection) {
		jk := fetch.Attr(card, "h2.jobTitle a", "data-jk")
		if jk == "" {
			jk = fetch.Attr(card, "a[data-jk]", "data-jk")
		}

		title := fetch.Attr(card, "h2.jobTitle span[title]", "title")
		if title == "" {
			title = fetch.Text(card, "h2.jobTitle")
		}

		row := Row{
			ColSite:        string(fetch.BoardIndeed),
			ColTitle:       title,
			ColCompany:     fetch.Text(card, "[data-testid='company-name']"),
			ColLocation:    fetch.Text(card, "[data-testid='text-location']"),
			ColDatePosted:  strings.TrimPrefix(fetch.Text(card, "span.date"), "Posted"),
			ColDescription: fetch.Text(card, "div.job-snippet"),
		}

		card.Find("[data-testid='attribute_snippet_testid']").EachWithBreak(func(_ int, chip *goquery.Selection) bool {
			text := fetch.CleanText(chip.Text())
			lower := strings.ToLower(text)
			for _, jt := range knownJobTypes {
				if strings.Contains(lower, jt) {
					row[ColJobType] = lower
					return false
				}
			}
			return true
		})

		if jk != "" {
			row[ColID] = fetch.BoardIndeed.IDPrefix() + "-" + jk
			row[ColJobURL] = base + "/viewjob?jk=" + jk
		}
		table = append(table, row)
	})
	return table
}

// indeedDays converts the recency window to Indeed's whole-day filter.
func indeedDays(hours int) string {
	if hours <= 0 {
		return ""
	}
	return strconv.Itoa(max(1, (hours+23)/24))
}
