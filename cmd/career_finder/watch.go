package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/career-finder/internal/observability"
	"github.com/jonathan/career-finder/internal/scheduler"
	"github.com/spf13/cobra"
)

var watchOnce bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run saved searches on a schedule and print new listings",
	Long: `Run the saved_searches from the config file on watch_schedule (cron syntax, default "@every 6h")
and print listings each search has not reported before.

Seen listings are kept in Redis when REDIS_URL is set, otherwise in memory for the life of the process.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Run every saved search once and exit")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, appNeeds{storage: true})
	if err != nil {
		return err
	}
	defer a.Close()

	var seen scheduler.SeenStore
	if a.redis != nil {
		seen = scheduler.NewRedisSeenStore(a.redis, scheduler.DefaultSeenTTL)
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	sched, err := scheduler.New(cfg.WatchSchedule, cfg.SavedSearches, a.searcher, seen, printer.PrintNewListings)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if watchOnce {
		for _, result := range sched.RunOnce(ctx) {
			if result.Err != nil {
				printer.PrintUnavailable("SAVED SEARCH FAILED: "+result.Search, result.Err.Error())
			}
		}
		return nil
	}

	if err := sched.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	log.Println("[scheduler] shutting down")
	sched.Stop()
	return nil
}
