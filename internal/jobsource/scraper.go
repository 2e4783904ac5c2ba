package jobsource

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Board scrapes a single job board.
type Board interface {
	Name() string
	Scrape(ctx context.Context, params ScrapeParams) (Table, error)
}

// BoardScraper is a Source that queries several boards concurrently and merges
// their rows in the order the boards were requested. A board that fails is
// logged and skipped; the scrape fails only if every requested board fails.
type BoardScraper struct {
	boards map[string]Board
}

// NewBoardScraper registers the given boards by name.
func NewBoardScraper(boards ...Board) *BoardScraper {
	s := &BoardScraper{boards: make(map[string]Board, len(boards))}
	for _, b := range boards {
		s.boards[b.Name()] = b
	}
	return s
}

// Boards returns the registered board names.
func (s *BoardScraper) Boards() []string {
	names := make([]string, 0, len(s.boards))
	for name := range s.boards {
		names = append(names, name)
	}
	return names
}

// Scrape implements Source.
func (s *BoardScraper) Scrape(ctx context.Context, params ScrapeParams) (Table, error) {
	requested := params.Boards
	if len(requested) == 0 {
		requested = DefaultBoards()
	}

	var selected []Board
	seen := make(map[string]bool)
	for _, name := range requested {
		name = strings.ToLower(strings.TrimSpace(name))
		if seen[name] {
			continue
		}
		seen[name] = true
		board, ok := s.boards[name]
		if !ok {
			log.Printf("[scraper] Unknown board %q requested, skipping", name)
			continue
		}
		selected = append(selected, board)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no supported boards in %v", requested)
	}

	tables := make([]Table, len(selected))
	errs := make([]error, len(selected))

	var g errgroup.Group
	for i, board := range selected {
		g.Go(func() error {
			table, err := board.Scrape(ctx, params)
			if err != nil {
				errs[i] = &BoardError{Board: board.Name(), Cause: err}
				log.Printf("[board:%s] %v", board.Name(), err)
				return nil
			}
			if params.ResultsWanted > 0 && len(table) > params.ResultsWanted {
				table = table[:params.ResultsWanted]
			}
			kept := make(Table, 0, len(table))
			for _, row := range table {
				if row == nil {
					continue
				}
				if row[ColSite] == "" {
					row[ColSite] = board.Name()
				}
				kept = append(kept, row)
			}
			tables[i] = kept
			log.Printf("[board:%s] %d row(s)", board.Name(), len(table))
			return nil
		})
	}
	_ = g.Wait()

	var merged Table
	failed := 0
	for i := range selected {
		if errs[i] != nil {
			failed++
			continue
		}
		merged = append(merged, tables[i]...)
	}

	if failed == len(selected) {
		return nil, errors.Join(errs...)
	}

	if merged == nil {
		merged = Table{}
	}
	return merged, nil
}
