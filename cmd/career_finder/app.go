package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/career-finder/internal/config"
	"github.com/jonathan/career-finder/internal/coverletter"
	"github.com/jonathan/career-finder/internal/db"
	"github.com/jonathan/career-finder/internal/fetch"
	"github.com/jonathan/career-finder/internal/jobsource"
	"github.com/jonathan/career-finder/internal/llm"
	"github.com/jonathan/career-finder/internal/session"
	"github.com/jonathan/career-finder/internal/types"
)

// app holds the services a command runs on. Optional backends stay nil when
// they are not configured.
type app struct {
	cfg      *config.Config
	searcher *jobsource.Adapter
	llm      llm.Client
	redis    *redis.Client
	memory   *session.MemoryStore
	db       *db.DB
	sessions *session.Orchestrator
}

// appNeeds selects the backends a command uses.
type appNeeds struct {
	drafter bool
	storage bool // Redis sessions and Postgres history when configured
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg *config.Config, needs appNeeds) (*app, error) {
	a := &app{cfg: cfg}

	var renderer fetch.Renderer
	if cfg.UseBrowser {
		renderer = fetch.NewBrowserRenderer(cfg.Verbose)
	}
	boards := buildBoards(cfg, renderer)
	if len(boards) == 0 {
		return nil, fmt.Errorf("no usable job boards in %v", cfg.Boards)
	}
	a.searcher = jobsource.NewAdapter(jobsource.NewBoardScraper(boards...), jobsource.Options{
		MaxListings:   cfg.MaxListings,
		ResultsWanted: cfg.ResultsWanted,
		HoursOld:      cfg.HoursOld,
		Boards:        boardNames(boards),
		Timeout:       cfg.SearchTimeout(),
	})

	var drafter session.Drafter = unconfiguredDrafter{}
	if needs.drafter {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("an API key is required for cover letters: set HF_TOKEN (or GEMINI_API_KEY with LLM_PROVIDER=gemini)")
		}
		client, err := llm.NewClient(ctx, llmConfig(cfg), cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		a.llm = client
		drafter = coverletter.NewDrafter(client, coverletter.Options{Timeout: cfg.DraftTimeout()})
	}

	var opts []session.Option
	if needs.storage {
		if cfg.RedisURL != "" {
			rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
			if err != nil {
				a.Close()
				return nil, err
			}
			a.redis = rdb
			opts = append(opts, session.WithStore(session.NewRedisStore(rdb, cfg.SessionTTL())))
			log.Printf("[session] Using Redis session store (ttl %s)", cfg.SessionTTL())
		} else {
			a.memory = session.NewMemoryStore(cfg.SessionTTL())
			a.memory.StartCleanup(session.DefaultCleanupInterval)
			opts = append(opts, session.WithStore(a.memory))
			log.Printf("[session] Using in-memory session store (ttl %s)", cfg.SessionTTL())
		}
		if cfg.DatabaseURL != "" {
			database, err := db.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				a.Close()
				return nil, err
			}
			a.db = database
			if err := database.EnsureSchema(ctx); err != nil {
				a.Close()
				return nil, err
			}
			opts = append(opts, session.WithRecorder(database))
			log.Println("[session] Recording history to PostgreSQL")
		}
	}
	a.sessions = session.NewOrchestrator(a.searcher, drafter, opts...)

	return a, nil
}

// Close releases every backend the app opened.
func (a *app) Close() {
	if a.llm != nil {
		if err := a.llm.Close(); err != nil {
			log.Printf("Warning: failed to close LLM client: %v", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("Warning: failed to close Redis client: %v", err)
		}
	}
	if a.memory != nil {
		a.memory.Stop()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// buildBoards creates the configured boards. Google needs the browser
// renderer and Adzuna needs credentials; either is skipped without them.
func buildBoards(cfg *config.Config, renderer fetch.Renderer) []jobsource.Board {
	var boards []jobsource.Board
	seen := make(map[string]bool)
	for _, name := range cfg.Boards {
		name = strings.ToLower(strings.TrimSpace(name))
		if seen[name] {
			continue
		}
		seen[name] = true

		switch fetch.Board(name) {
		case fetch.BoardLinkedIn:
			boards = append(boards, jobsource.NewLinkedInBoard())
		case fetch.BoardIndeed:
			boards = append(boards, jobsource.NewIndeedBoard(renderer))
		case fetch.BoardGoogle:
			if renderer == nil {
				log.Printf("[board:google] Skipped: needs use_browser")
				continue
			}
			boards = append(boards, jobsource.NewGoogleBoard(renderer))
		case fetch.BoardAdzuna:
			if cfg.AdzunaAppID == "" || cfg.AdzunaAppKey == "" {
				log.Printf("[board:adzuna] Skipped: ADZUNA_APP_ID and ADZUNA_APP_KEY are not set")
				continue
			}
			boards = append(boards, jobsource.NewAdzunaBoard(cfg.AdzunaAppID, cfg.AdzunaAppKey))
		default:
			log.Printf("[board:%s] Skipped: unknown board", name)
		}
	}
	return boards
}

func boardNames(boards []jobsource.Board) []string {
	names := make([]string, len(boards))
	for i, b := range boards {
		names[i] = b.Name()
	}
	return names
}

// llmConfig maps the application config onto the client config.
func llmConfig(cfg *config.Config) *llm.Config {
	var lc *llm.Config
	if llm.Provider(cfg.LLMProvider) == llm.ProviderGemini {
		lc = llm.DefaultGeminiConfig()
	} else {
		lc = llm.DefaultConfig()
		lc.Provider = llm.Provider(cfg.LLMProvider)
		if cfg.LLMBaseURL != "" {
			lc.BaseURL = cfg.LLMBaseURL
		}
	}
	if cfg.LLMModel != "" {
		lc = lc.WithModel(cfg.LLMModel)
	}
	lc.MaxRetries = cfg.LLMMaxRetries
	return lc
}

// unconfiguredDrafter backs commands that never draft.
type unconfiguredDrafter struct{}

func (unconfiguredDrafter) Draft(context.Context, types.JobListing, string) (string, error) {
	return "", &coverletter.DraftUnavailableError{Message: "cover letter drafting is not configured"}
}
