package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/career-finder/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes job search sessions and cover letter drafting.

Sessions are kept in Redis when REDIS_URL is set and history is recorded when DATABASE_URL is set.
Routes require a bearer token when JWT_SECRET is set; tokens are issued with 'issue-token'.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(context.Background(), cfg, appNeeds{drafter: true, storage: true})
	if err != nil {
		return err
	}
	defer a.Close()

	jwtConfig, err := cfg.JWT()
	if err != nil {
		return fmt.Errorf("invalid JWT configuration: %w", err)
	}
	if jwtConfig == nil {
		log.Println("[server] JWT_SECRET not set, API routes are unauthenticated")
	}

	srvCfg := server.Config{
		Port:     servePort,
		Sessions: a.sessions,
		JWT:      jwtConfig,
	}
	if a.db != nil {
		srvCfg.History = a.db
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
