// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonathan/career-finder/internal/types"
)

// Config represents the application configuration. It can be loaded from a JSON
// file; missing values use defaults and environment variables override both.
type Config struct {
	// Search
	Boards               []string `json:"boards,omitempty"`                 // Job boards to query
	MaxListings          int      `json:"max_listings,omitempty"`           // Listings returned per search
	ResultsWanted        int      `json:"results_wanted,omitempty"`         // Rows requested from each board
	HoursOld             int      `json:"hours_old,omitempty"`              // Recency window in hours
	SearchTimeoutSeconds int      `json:"search_timeout_seconds,omitempty"` // Bound on one search
	UseBrowser           bool     `json:"use_browser,omitempty"`            // Render boards in headless Chrome
	AdzunaAppID          string   `json:"adzuna_app_id,omitempty"`
	AdzunaAppKey         string   `json:"adzuna_app_key,omitempty"`

	// Text generation
	LLMProvider         string `json:"llm_provider,omitempty"` // huggingface, openai or gemini
	LLMModel            string `json:"llm_model,omitempty"`
	LLMBaseURL          string `json:"llm_base_url,omitempty"`
	APIKey              string `json:"api_key,omitempty"` // Bearer token or Gemini key
	DraftTimeoutSeconds int    `json:"draft_timeout_seconds,omitempty"`
	LLMMaxRetries       int    `json:"llm_max_retries,omitempty"` // 429 retries per draft, off by default

	// Storage
	DatabaseURL     string `json:"database_url,omitempty"` // PostgreSQL history, optional
	RedisURL        string `json:"redis_url,omitempty"`    // Shared sessions and watcher state, optional
	SessionTTLHours int    `json:"session_ttl_hours,omitempty"`

	// Auth
	JWTSecret          string `json:"jwt_secret,omitempty"`
	JWTExpirationHours int    `json:"jwt_expiration_hours,omitempty"`

	// Watcher
	WatchSchedule string              `json:"watch_schedule,omitempty"` // cron spec, e.g. "@every 6h"
	SavedSearches []types.SavedSearch `json:"saved_searches,omitempty"`

	Verbose bool `json:"verbose,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Boards:               []string{"indeed", "linkedin", "google"},
		MaxListings:          5,
		ResultsWanted:        20,
		HoursOld:             72,
		SearchTimeoutSeconds: 60,
		LLMProvider:          "huggingface",
		LLMBaseURL:           "https://router.huggingface.co/v1",
		LLMModel:             "ServiceNow-AI/Apriel-1.6-15b-Thinker:together",
		DraftTimeoutSeconds:  120,
		SessionTTLHours:      24,
		JWTExpirationHours:   24,
		WatchSchedule:        "@every 6h",
	}
}

var knownBoards = []string{"indeed", "linkedin", "google", "adzuna"}

var knownProviders = []string{"huggingface", "openai", "gemini"}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load builds the effective configuration: the optional file at path merged
// over Defaults, then environment overrides, then validation.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// ApplyEnv overrides fields from environment variables. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	previousProvider := c.LLMProvider
	setString(&c.LLMProvider, "LLM_PROVIDER")
	if c.LLMProvider != previousProvider {
		// the merged model belongs to the previous provider
		c.LLMModel = ""
	}
	setString(&c.LLMModel, "LLM_MODEL")
	setString(&c.LLMBaseURL, "LLM_BASE_URL")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.AdzunaAppID, "ADZUNA_APP_ID")
	setString(&c.AdzunaAppKey, "ADZUNA_APP_KEY")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.WatchSchedule, "WATCH_SCHEDULE")

	// The key variable depends on the provider.
	if c.LLMProvider == "gemini" {
		setString(&c.APIKey, "GEMINI_API_KEY")
	} else {
		setString(&c.APIKey, "HF_TOKEN")
	}

	if v := strings.TrimSpace(getenv("JOB_BOARDS")); v != "" {
		c.Boards = splitList(v)
	}

	for key, dst := range map[string]*int{
		"JWT_EXPIRATION_HOURS":   &c.JWTExpirationHours,
		"MAX_LISTINGS":           &c.MaxListings,
		"SEARCH_TIMEOUT_SECONDS": &c.SearchTimeoutSeconds,
		"DRAFT_TIMEOUT_SECONDS":  &c.DraftTimeoutSeconds,
		"LLM_MAX_RETRIES":        &c.LLMMaxRetries,
	} {
		if err := setInt(dst, key); err != nil {
			return err
		}
	}

	if v := strings.TrimSpace(getenv("USE_BROWSER")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid USE_BROWSER: %w", err)
		}
		c.UseBrowser = b
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that the configuration has valid values.
// Credentials are not required here; commands that need them check for them.
func (c *Config) Validate() error {
	// Validate numeric ranges
	if c.MaxListings < 0 {
		return fmt.Errorf("config error: 'max_listings' must be non-negative")
	}
	if c.ResultsWanted < 0 {
		return fmt.Errorf("config error: 'results_wanted' must be non-negative")
	}
	if c.MaxListings > 0 && c.ResultsWanted > 0 && c.MaxListings > c.ResultsWanted {
		return fmt.Errorf("config error: 'max_listings' (%d) cannot exceed 'results_wanted' (%d)", c.MaxListings, c.ResultsWanted)
	}
	if c.HoursOld < 0 {
		return fmt.Errorf("config error: 'hours_old' must be non-negative")
	}
	if c.SearchTimeoutSeconds < 0 || c.DraftTimeoutSeconds < 0 {
		return fmt.Errorf("config error: timeouts must be non-negative")
	}
	if c.LLMMaxRetries < 0 {
		return fmt.Errorf("config error: 'llm_max_retries' must be non-negative")
	}
	if c.SessionTTLHours < 0 {
		return fmt.Errorf("config error: 'session_ttl_hours' must be non-negative")
	}

	for _, board := range c.Boards {
		if !slices.Contains(knownBoards, strings.ToLower(board)) {
			return fmt.Errorf("config error: unknown board %q (known: %s)", board, strings.Join(knownBoards, ", "))
		}
	}

	if c.LLMProvider != "" && !slices.Contains(knownProviders, c.LLMProvider) {
		return fmt.Errorf("config error: unknown llm_provider %q (known: %s)", c.LLMProvider, strings.Join(knownProviders, ", "))
	}

	if c.WatchSchedule != "" {
		if _, err := cron.ParseStandard(c.WatchSchedule); err != nil {
			return fmt.Errorf("config error: invalid watch_schedule %q: %w", c.WatchSchedule, err)
		}
	}

	for i := range c.SavedSearches {
		if err := c.SavedSearches[i].Validate(); err != nil {
			return fmt.Errorf("config error: saved search %d: %w", i, err)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	mergeString := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	mergeString(&result.LLMProvider, defaults.LLMProvider)
	mergeString(&result.LLMBaseURL, defaults.LLMBaseURL)
	mergeString(&result.APIKey, defaults.APIKey)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)
	mergeString(&result.RedisURL, defaults.RedisURL)
	mergeString(&result.AdzunaAppID, defaults.AdzunaAppID)
	mergeString(&result.AdzunaAppKey, defaults.AdzunaAppKey)
	mergeString(&result.JWTSecret, defaults.JWTSecret)
	mergeString(&result.WatchSchedule, defaults.WatchSchedule)

	// The default model belongs to the default provider
	if result.LLMModel == "" && result.LLMProvider == defaults.LLMProvider {
		result.LLMModel = defaults.LLMModel
	}

	// Int fields: use default if zero
	mergeInt := func(dst *int, def int) {
		if *dst == 0 {
			*dst = def
		}
	}
	mergeInt(&result.MaxListings, defaults.MaxListings)
	mergeInt(&result.ResultsWanted, defaults.ResultsWanted)
	mergeInt(&result.HoursOld, defaults.HoursOld)
	mergeInt(&result.SearchTimeoutSeconds, defaults.SearchTimeoutSeconds)
	mergeInt(&result.DraftTimeoutSeconds, defaults.DraftTimeoutSeconds)
	mergeInt(&result.SessionTTLHours, defaults.SessionTTLHours)
	mergeInt(&result.JWTExpirationHours, defaults.JWTExpirationHours)

	if len(result.Boards) == 0 {
		result.Boards = append([]string(nil), defaults.Boards...)
	}
	if len(result.SavedSearches) == 0 {
		result.SavedSearches = defaults.SavedSearches
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags and env should always win for bools)

	return result
}

// SearchTimeout returns the search bound as a duration.
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.SearchTimeoutSeconds) * time.Second
}

// DraftTimeout returns the drafting bound as a duration.
func (c *Config) DraftTimeout() time.Duration {
	return time.Duration(c.DraftTimeoutSeconds) * time.Second
}

// SessionTTL returns how long idle sessions are kept in Redis.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}
