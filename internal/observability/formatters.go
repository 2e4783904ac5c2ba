// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/career-finder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// descriptionPreview is how many characters of a description a listing box shows
	descriptionPreview = 240
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most width runes, ending in "..." when cut.
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", inner, truncate(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		line = truncate(line, inner)
		// pad by rune count so non-ASCII text keeps the border aligned
		pad := inner - utf8.RuneCountInString(line)
		fmt.Fprintf(p.out, "│ %s%s │\n", line, strings.Repeat(" ", pad))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// wrap breaks text into lines of at most width runes on word boundaries.
func wrap(text string, width int) []string {
	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && utf8.RuneCountInString(current.String())+1+utf8.RuneCountInString(word) > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

func writeListing(sb *strings.Builder, listing types.JobListing) {
	sb.WriteString(fmt.Sprintf("Job Title: %s\n", listing.Title))
	sb.WriteString(fmt.Sprintf("Company:   %s\n", listing.Company))
	sb.WriteString(fmt.Sprintf("Location:  %s\n", listing.Location))
	if types.IsAvailable(listing.DatePosted) || types.IsAvailable(listing.JobType) {
		sb.WriteString(fmt.Sprintf("Posted:    %s   Type: %s\n", listing.DatePosted, listing.JobType))
	}
	sb.WriteString(fmt.Sprintf("ID:        %s (%s)\n", listing.ID, listing.Site))
	if types.IsAvailable(listing.JobURL) {
		sb.WriteString(fmt.Sprintf("URL:       %s\n", listing.JobURL))
	}
	if types.IsAvailable(listing.JobURLDirect) && listing.JobURLDirect != listing.JobURL {
		sb.WriteString(fmt.Sprintf("Apply:     %s\n", listing.JobURLDirect))
	}
}

// PrintListings outputs one box per listing, or a notice when there are none.
func (p *Printer) PrintListings(req types.SearchRequest, listings []types.JobListing) {
	header := fmt.Sprintf("JOBS: %s in %s", req.Term(), req.Location)
	if len(listings) == 0 {
		p.printBox(header, "No jobs found. Try other keywords or a wider location.")
		return
	}

	for i, listing := range listings {
		var sb strings.Builder
		writeListing(&sb, listing)
		if types.IsAvailable(listing.Description) {
			sb.WriteString("\n")
			preview := truncate(strings.Join(strings.Fields(listing.Description), " "), descriptionPreview)
			sb.WriteString(strings.Join(wrap(preview, boxWidth-4), "\n"))
		}
		p.printBox(fmt.Sprintf("%s  [%d/%d]", header, i+1, len(listings)), strings.TrimSuffix(sb.String(), "\n"))
	}
}

// PrintListing outputs a listing with its full description.
func (p *Printer) PrintListing(listing types.JobListing) {
	var sb strings.Builder
	writeListing(&sb, listing)
	sb.WriteString("\n")
	for _, para := range strings.Split(listing.Description, "\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		sb.WriteString(strings.Join(wrap(para, boxWidth-4), "\n"))
		sb.WriteString("\n")
	}
	p.printBox("JOB DESCRIPTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCoverLetter outputs a drafted letter under the listing headline.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintCoverLetter(listing types.JobListing, text string) {
	p.printBox("COVER LETTER", listing.Headline())
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, strings.TrimSpace(text))
	fmt.Fprintln(p.out)
}

// PrintUnavailable outputs the message shown in place of results after a recoverable failure.
func (p *Printer) PrintUnavailable(title, message string) {
	p.printBox("⚠ "+title, message)
}

// PrintNewListings outputs listings a saved search found for the first time.
func (p *Printer) PrintNewListings(search types.SavedSearch, listings []types.JobListing) {
	if len(listings) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d new listing(s) for %s in %s:\n\n", len(listings), strings.Join(search.Keywords, ", "), search.Location))

	count := min(len(listings), maxItemsToShow)
	for i := 0; i < count; i++ {
		l := listings[i]
		sb.WriteString(fmt.Sprintf("• %s at %s\n", l.Title, l.Company))
		sb.WriteString(fmt.Sprintf("  %s  %s\n", l.Location, l.JobURL))
	}
	if len(listings) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(listings)-maxItemsToShow))
	}

	p.printBox("SAVED SEARCH: "+search.Name, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintToken outputs an issued API token.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintToken(resp *types.TokenResponse) {
	if resp == nil {
		return
	}
	p.printBox("API TOKEN", fmt.Sprintf("Client:  %s\nExpires: %s", resp.ClientID, resp.ExpiresAt.Format("2006-01-02 15:04 MST")))
	fmt.Fprintln(p.out, resp.Token)
}
