package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/jonathan/career-finder/internal/jobsource"
	"github.com/jonathan/career-finder/internal/observability"
	"github.com/jonathan/career-finder/internal/types"
	"github.com/spf13/cobra"
)

var (
	searchKeywords []string
	searchLocation string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search job boards for listings",
	Long: `Search the configured job boards for listings matching every keyword in one location
and print the first results.

Locations: Germany, Austria, Switzerland, USA, Canada, UK.`,
	Example: `  career_finder search -k python -k backend -l Germany`,
	RunE:    runSearch,
}

func init() {
	searchCmd.Flags().StringArrayVarP(&searchKeywords, "keyword", "k", nil, "Search keyword (repeatable)")
	searchCmd.Flags().StringVarP(&searchLocation, "location", "l", "", "Country to search in")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	req, err := searchRequest(searchKeywords, searchLocation)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx, cfg, appNeeds{})
	if err != nil {
		return err
	}
	defer a.Close()

	printer := observability.NewPrinter(cmd.OutOrStdout())
	listings, err := a.searcher.Search(ctx, req.Keywords, req.Location)
	if err != nil {
		var sourceErr *jobsource.SourceUnavailableError
		if errors.As(err, &sourceErr) {
			printer.PrintUnavailable("SEARCH FAILED", sourceErr.Message)
			return nil
		}
		return err
	}

	printer.PrintListings(req, listings)
	return nil
}

// searchRequest normalizes the keyword flags and validates the request.
func searchRequest(keywords []string, location string) (types.SearchRequest, error) {
	req := types.SearchRequest{
		Keywords: types.NormalizeKeywords(keywords),
		Location: location,
	}
	if err := req.Validate(); err != nil {
		return types.SearchRequest{}, err
	}
	return req, nil
}
