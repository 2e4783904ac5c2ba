package jobsource

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/career-finder/internal/fetch"
)

// GoogleSelectors locate job cards in the rendered Google jobs page. Google
// changes its markup often, so they are configurable.
type GoogleSelectors struct {
	Card     string
	Title    string
	Company  string
	Location string
	Posted   string
	JobType  string
	Link     string
}

// DefaultGoogleSelectors returns the selectors for the current jobs panel.
func DefaultGoogleSelectors() GoogleSelectors {
	return GoogleSelectors{
		Card:     "div.PwjeAc",
		Title:    "div.BjJfJf",
		Company:  "div.vNEEBe",
		Location: "div.Qk80Jf",
		Posted:   "span.LL4CDc",
		JobType:  "span.RcZtZb",
		Link:     "a[href]",
	}
}

// GoogleBoard scrapes Google's jobs search. The page only renders client-side,
// so a Renderer is required.
type GoogleBoard struct {
	BaseURL   string
	Renderer  fetch.Renderer
	Selectors GoogleSelectors
}

// NewGoogleBoard creates a Google board using renderer.
func NewGoogleBoard(renderer fetch.Renderer) *GoogleBoard {
	return &GoogleBoard{
		BaseURL:   "https://www.google.com",
		Renderer:  renderer,
		Selectors: DefaultGoogleSelectors(),
	}
}

// Name implements Board.
func (b *GoogleBoard) Name() string { return string(fetch.BoardGoogle) }

// Scrape implements Board.
func (b *GoogleBoard) Scrape(ctx context.Context, params ScrapeParams) (Table, error) {
	if b.Renderer == nil {
		return nil, errors.New("google jobs needs a browser renderer")
	}

	term := params.GoogleSearchTerm
	if term == "" {
		term = params.SearchTerm
	}

	reqURL, err := fetch.BuildURL(strings.TrimSuffix(b.BaseURL, "/")+"/search", map[string]string{
		"q":   term,
		"udm": "8",
		"gl":  strings.ToLower(params.CountryCode),
	})
	if err != nil {
		return nil, err
	}

	html, err := b.Renderer.Render(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	doc, err := fetch.ParseHTML(html)
	if err != nil {
		return nil, err
	}

	table := parseGoogleCards(doc, b.Selectors)
	if params.ResultsWanted > 0 && len(table) > params.ResultsWanted {
		table = table[:params.ResultsWanted]
	}
	return table, nil
}

func parseGoogleCards(doc *goquery.Document, sel GoogleSelectors) Table {
	var table Table
	doc.Find(sel.Card).Each(func(_ int, card *goquery.Selection) {
		row := Row{
			ColSite:       string(fetch.BoardGoogle),
			ColTitle:      fetch.Text(card, sel.Title),
			ColCompany:    fetch.Text(card, sel.Company),
			ColLocation:   fetch.Text(card, sel.Location),
			ColDatePosted: fetch.Text(card, sel.Posted),
			ColJobType:    strings.ToLower(fetch.Text(card, sel.JobType)),
			ColJobURL:     fetch.Attr(card, sel.Link, "href"),
		}
		if row[ColTitle] == "" {
			return
		}
		row[ColID] = fetch.BoardGoogle.IDPrefix() + "-" + googleJobID(row)
		table = append(table, row)
	})
	return table
}

// googleJobID derives a stable id since cards carry no usable identifier.
func googleJobID(row Row) string {
	sum := sha256.Sum256([]byte(row[ColTitle] + "|" + row[ColCompany] + "|" + row[ColLocation]))
	return hex.EncodeToString(sum[:8])
}
