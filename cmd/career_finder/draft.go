package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/jonathan/career-finder/internal/coverletter"
	"github.com/jonathan/career-finder/internal/jobsource"
	"github.com/jonathan/career-finder/internal/observability"
	"github.com/jonathan/career-finder/internal/types"
	"github.com/spf13/cobra"
)

var (
	draftKeywords       []string
	draftLocation       string
	draftListingID      string
	draftBackgroundFile string
	draftShowListing    bool
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Search, then draft a cover letter for one listing",
	Long: `Run a search, pick a listing from its results and draft a cover letter for it
from your background text.

The listing is chosen with --listing; without it the first result is used.
Use --background-file - to read the background from stdin.`,
	Example: `  career_finder draft -k golang -l Germany --background-file cv.txt
  cat cv.txt | career_finder draft -k golang -l UK --listing li-4023 --background-file -`,
	RunE: runDraft,
}

func init() {
	draftCmd.Flags().StringArrayVarP(&draftKeywords, "keyword", "k", nil, "Search keyword (repeatable)")
	draftCmd.Flags().StringVarP(&draftLocation, "location", "l", "", "Country to search in")
	draftCmd.Flags().StringVar(&draftListingID, "listing", "", "Listing ID from the search results (default: first result)")
	draftCmd.Flags().StringVarP(&draftBackgroundFile, "background-file", "b", "", "Path to your background text, or - for stdin")
	draftCmd.Flags().BoolVar(&draftShowListing, "show-listing", false, "Print the full listing before the letter")
	_ = draftCmd.MarkFlagRequired("background-file")
	rootCmd.AddCommand(draftCmd)
}

func runDraft(cmd *cobra.Command, _ []string) error {
	req, err := searchRequest(draftKeywords, draftLocation)
	if err != nil {
		return err
	}
	background, err := readBackground(draftBackgroundFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if err := types.ValidateBackground(background); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx, cfg, appNeeds{drafter: true, storage: true})
	if err != nil {
		return err
	}
	defer a.Close()

	printer := observability.NewPrinter(cmd.OutOrStdout())

	sessionID, err := a.sessions.NewSession(ctx)
	if err != nil {
		return err
	}
	listings, err := a.sessions.Search(ctx, sessionID, req)
	if err != nil {
		var sourceErr *jobsource.SourceUnavailableError
		if errors.As(err, &sourceErr) {
			printer.PrintUnavailable("SEARCH FAILED", sourceErr.Message)
			return nil
		}
		return err
	}

	listing, err := pickListing(listings, draftListingID)
	if err != nil {
		printer.PrintListings(req, listings)
		return err
	}
	if draftShowListing {
		printer.PrintListing(listing)
	}

	text, err := a.sessions.DraftCoverLetter(ctx, sessionID, listing.ID, background)
	if err != nil {
		var draftErr *coverletter.DraftUnavailableError
		if errors.As(err, &draftErr) {
			printer.PrintUnavailable("COVER LETTER UNAVAILABLE", draftErr.Message)
			return nil
		}
		return err
	}

	printer.PrintCoverLetter(listing, text)
	return nil
}

// readBackground reads the background text from path, or from stdin when path is "-".
func readBackground(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return "", fmt.Errorf("--background-file is required")
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read background: %w", err)
	}
	return string(data), nil
}

// pickListing selects a listing by id, or the first listing when id is empty.
func pickListing(listings []types.JobListing, id string) (types.JobListing, error) {
	if len(listings) == 0 {
		return types.JobListing{}, fmt.Errorf("no listings found, try other keywords")
	}
	if id == "" {
		return listings[0], nil
	}

	ids := make([]string, len(listings))
	for i, l := range listings {
		if l.ID == id {
			return l, nil
		}
		ids[i] = l.ID
	}
	return types.JobListing{}, fmt.Errorf("listing %q not in results (have %s)", id, strings.Join(ids, ", "))
}
