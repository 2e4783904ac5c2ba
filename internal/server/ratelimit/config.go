package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern ("*" matches one segment, trailing "/" matches a prefix)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	return loadConfig(os.Getenv)
}

func loadConfig(getenv func(string) string) *Config {
	enabled := getEnvBool(getenv, "RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{
			Enabled: false,
		}
	}

	defaultLimit := getEnvInt(getenv, "RATE_LIMIT_DEFAULT_LIMIT", 1000)
	defaultWindow := getEnvDuration(getenv, "RATE_LIMIT_DEFAULT_WINDOW", time.Minute)
	cleanupInterval := getEnvDuration(getenv, "RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute)

	whitelist := parseIPList(getEnvString(getenv, "RATE_LIMIT_WHITELIST", ""))
	blacklist := parseIPList(getEnvString(getenv, "RATE_LIMIT_BLACKLIST", ""))

	endpoints := DefaultEndpointConfigs()
	searchLimit := getEnvInt(getenv, "RATE_LIMIT_SEARCH_PER_HOUR", 0)
	draftLimit := getEnvInt(getenv, "RATE_LIMIT_DRAFT_PER_HOUR", 0)
	for i := range endpoints {
		switch {
		case searchLimit > 0 && strings.HasSuffix(endpoints[i].Path, "/search"):
			endpoints[i].Limit = searchLimit
		case draftLimit > 0 && strings.Contains(endpoints[i].Path, "/cover-letter"):
			endpoints[i].Limit = draftLimit
		}
	}

	return &Config{
		Enabled:         enabled,
		DefaultLimit:    defaultLimit,
		DefaultWindow:   defaultWindow,
		CleanupInterval: cleanupInterval,
		Whitelist:       whitelist,
		Blacklist:       blacklist,
		EndpointConfigs: endpoints,
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: calls that reach job boards or the text-generation provider
		{Path: "/sessions/*/search", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/sessions/*/listings/*/cover-letter", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},
		{Path: "/sessions/*/listings/*/cover-letter/stream", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},

		// Tier 2: session creation
		{Path: "/sessions", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},

		// Tier 3: reads are handled by the default limit
		// Tier 4: health check is unlimited, handled in the matcher
	}
}

func getEnvString(getenv func(string) string, key string, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(getenv func(string) string, key string, defaultValue int) int {
	if value := getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(getenv func(string) string, key string, defaultValue bool) bool {
	if value := getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(getenv func(string) string, key string, defaultValue time.Duration) time.Duration {
	if value := getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	if list == "" {
		return result
	}

	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}

	return result
}
