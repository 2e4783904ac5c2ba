// Package scheduler runs saved searches on a cron schedule and reports
// listings that have not been seen before.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/jonathan/career-finder/internal/types"
)

// Searcher runs one keyword search.
type Searcher interface {
	Search(ctx context.Context, keywords []string, location string) ([]types.JobListing, error)
}

// NotifyFunc receives the new listings of one saved search.
type NotifyFunc func(search types.SavedSearch, listings []types.JobListing)

// RunResult summarises one saved search in a cycle.
type RunResult struct {
	Search string
	Found  int
	New    int
	Err    error
}

// Scheduler wraps robfig/cron and runs the saved searches.
type Scheduler struct {
	cron     *cron.Cron
	spec     string // cron spec, e.g. "@every 6h"
	searches []types.SavedSearch
	searcher Searcher
	seen     SeenStore
	notify   NotifyFunc
	cycleMu  sync.Mutex
}

// New validates the cron spec and saved searches and returns an idle Scheduler.
func New(spec string, searches []types.SavedSearch, searcher Searcher, seen SeenStore, notify NotifyFunc) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	if len(searches) == 0 {
		return nil, fmt.Errorf("no saved searches configured")
	}
	for i := range searches {
		if err := searches[i].Validate(); err != nil {
			return nil, fmt.Errorf("saved search %q: %w", searches[i].Name, err)
		}
	}
	if seen == nil {
		seen = NewMemorySeenStore()
	}
	if notify == nil {
		notify = func(types.SavedSearch, []types.JobListing) {}
	}

	logger := cron.VerbosePrintfLogger(log.Default())
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		spec:     spec,
		searches: searches,
		searcher: searcher,
		seen:     seen,
		notify:   notify,
	}, nil
}

// Start registers the job and starts the scheduler. Also runs one cycle
// immediately so results arrive without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.tick(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] cron started, spec: %s, %d saved search(es)", s.spec, len(s.searches))

	// Run immediately on startup (non-blocking)
	go s.RunOnce(ctx)

	return nil
}

// Stop halts the schedule and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()
	log.Println("[scheduler] cron stopped")
}

// tick runs a scheduled cycle unless one is already in progress, including
// the startup cycle. Reports whether the cycle ran.
func (s *Scheduler) tick(ctx context.Context) bool {
	if !s.cycleMu.TryLock() {
		log.Println("[scheduler] previous cycle still running, skipping tick")
		return false
	}
	defer s.cycleMu.Unlock()
	s.runCycle(ctx)
	return true
}

// RunOnce runs every saved search in order, waiting for a running cycle to
// finish first. A failing search is logged and does not stop the cycle.
func (s *Scheduler) RunOnce(ctx context.Context) []RunResult {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()
	return s.runCycle(ctx)
}

func (s *Scheduler) runCycle(ctx context.Context) []RunResult {
	log.Println("[scheduler] cycle started")
	results := make([]RunResult, 0, len(s.searches))
	for _, search := range s.searches {
		if ctx.Err() != nil {
			break
		}
		result := s.runSearch(ctx, search)
		if result.Err != nil {
			log.Printf("[scheduler] saved search %s failed: %v", search.Name, result.Err)
		}
		results = append(results, result)
	}
	log.Printf("[scheduler] cycle complete, %d search(es) run", len(results))
	return results
}

func (s *Scheduler) runSearch(ctx context.Context, search types.SavedSearch) RunResult {
	result := RunResult{Search: search.Name}

	listings, err := s.searcher.Search(ctx, search.Keywords, search.Location)
	if err != nil {
		result.Err = err
		return result
	}
	result.Found = len(listings)

	ids := make([]string, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}
	fresh, err := s.seen.MarkSeen(ctx, search.Name, ids)
	if err != nil {
		result.Err = err
		return result
	}

	freshSet := make(map[string]bool, len(fresh))
	for _, id := range fresh {
		freshSet[id] = true
	}
	newListings := make([]types.JobListing, 0, len(fresh))
	for _, l := range listings {
		if freshSet[l.ID] {
			newListings = append(newListings, l)
			delete(freshSet, l.ID)
		}
	}

	result.New = len(newListings)
	if len(newListings) > 0 {
		s.notify(search, newListings)
	}
	log.Printf("[scheduler] saved search %s: %d found, %d new", search.Name, result.Found, result.New)
	return result
}
