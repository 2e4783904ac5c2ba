package jobsource

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/jonathan/career-finder/internal/fetch"
)

const (
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
	adzunaMaxPages = 3
)

// AdzunaBoard queries the Adzuna public jobs API.
// Without credentials it returns no rows rather than an error.
type AdzunaBoard struct {
	AppID   string
	AppKey  string
	BaseURL string
	Options *fetch.Options
}

// NewAdzunaBoard creates an Adzuna board with the public API endpoint.
func NewAdzunaBoard(appID, appKey string) *AdzunaBoard {
	return &AdzunaBoard{
		AppID:   appID,
		AppKey:  appKey,
		BaseURL: adzunaBaseURL,
		Options: fetch.DefaultOptions(),
	}
}

// Name implements Board.
func (b *AdzunaBoard) Name() string { return string(fetch.BoardAdzuna) }

type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

type adzunaResult struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Company      adzunaCompany  `json:"company"`
	Location     adzunaLocation `json:"location"`
	RedirectURL  string         `json:"redirect_url"`
	Created      string         `json:"created"`
	ContractTime string         `json:"contract_time"`
	ContractType string         `json:"contract_type"`
}

type adzunaCompany struct {
	DisplayName string `json:"display_name"`
}

type adzunaLocation struct {
	DisplayName string `json:"display_name"`
}

// Scrape implements Board.
func (b *AdzunaBoard) Scrape(ctx context.Context, params ScrapeParams) (Table, error) {
	if b.AppID == "" || b.AppKey == "" {
		log.Println("[board:adzuna] ADZUNA_APP_ID / ADZUNA_APP_KEY not set, skipping")
		return Table{}, nil
	}

	country := adzunaCountry(params.CountryCode)
	maxDays := max(1, (params.HoursOld+23)/24)

	var table Table
	for page := 1; page <= adzunaMaxPages; page++ {
		endpoint := fmt.Sprintf("%s/%s/search/%d", strings.TrimSuffix(b.BaseURL, "/"), country, page)
		reqURL, err := fetch.BuildURL(endpoint, map[string]string{
			"app_id":           b.AppID,
			"app_key":          b.AppKey,
			"results_per_page": strconv.Itoa(adzunaPageSize),
			"what":             params.SearchTerm,
			"max_days_old":     strconv.Itoa(maxDays),
			"sort_by":          "date",
			"content-type":     "application/json",
		})
		if err != nil {
			return table, err
		}

		var resp adzunaResponse
		if err := fetch.JSON(ctx, reqURL, b.Options, &resp); err != nil {
			return table, fmt.Errorf("page %d: %w", page, err)
		}

		for _, r := range resp.Results {
			row := Row{
				ColSite:        b.Name(),
				ColJobURL:      r.RedirectURL,
				ColTitle:       r.Title,
				ColCompany:     r.Company.DisplayName,
				ColLocation:    r.Location.DisplayName,
				ColDatePosted:  datePart(r.Created),
				ColJobType:     adzunaJobType(r.ContractTime, r.ContractType),
				ColDescription: r.Description,
			}
			if r.ID != "" {
				row[ColID] = fetch.BoardAdzuna.IDPrefix() + "-" + r.ID
			}
			table = append(table, row)
		}

		if len(resp.Results) < adzunaPageSize || (params.ResultsWanted > 0 && len(table) >= params.ResultsWanted) {
			break
		}
	}

	return table, nil
}

// adzunaCountry maps an ISO code to Adzuna's country path segment.
func adzunaCountry(code string) string {
	code = strings.ToLower(code)
	if code == "" {
		return "us"
	}
	return code
}

func adzunaJobType(contractTime, contractType string) string {
	var parts []string
	for _, p := range []string{contractTime, contractType} {
		if p != "" {
			parts = append(parts, strings.ReplaceAll(p, "_", ""))
		}
	}
	return strings.Join(parts, ", ")
}

// datePart keeps the YYYY-MM-DD prefix of an RFC 3339 timestamp.
func datePart(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
