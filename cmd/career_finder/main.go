// Package main provides the career_finder CLI: job search, cover letter
// drafting, the HTTP API server and the saved-search watcher.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "career_finder",
	Short: "Job search and cover letter drafting",
	Long: `career_finder searches job boards for a keyword list in one of the supported countries
and drafts cover letters for the listings it finds, from the command line or over a REST API.

Configuration is read from --config (JSON) when given, then from the environment.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
