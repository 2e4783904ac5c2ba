package main

import (
	"fmt"

	"github.com/jonathan/career-finder/internal/observability"
	"github.com/jonathan/career-finder/internal/server"
	"github.com/jonathan/career-finder/internal/types"
	"github.com/spf13/cobra"
)

var issueClientID string

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Issue an API token for a client",
	Long: `Sign a bearer token for the REST API with JWT_SECRET. The token expires after
JWT_EXPIRATION_HOURS (default 24).`,
	Example: `  career_finder issue-token --client frontend`,
	RunE:    runIssueToken,
}

func init() {
	issueTokenCmd.Flags().StringVar(&issueClientID, "client", "", "Client identifier recorded in the token")
	_ = issueTokenCmd.MarkFlagRequired("client")
	rootCmd.AddCommand(issueTokenCmd)
}

func runIssueToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	jwtConfig, err := cfg.JWT()
	if err != nil {
		return fmt.Errorf("invalid JWT configuration: %w", err)
	}
	if jwtConfig == nil {
		return fmt.Errorf("JWT_SECRET is required to issue tokens")
	}

	resp, err := server.NewJWTService(jwtConfig).IssueToken(types.TokenRequest{ClientID: issueClientID})
	if err != nil {
		return err
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintToken(resp)
	return nil
}
