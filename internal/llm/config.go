// Package llm provides text-generation clients behind a provider-neutral interface.
// The default provider is an OpenAI-compatible chat completion endpoint (the
// Hugging Face inference router); Gemini is available through the Google SDK.
package llm

import "time"

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderHuggingFace is the Hugging Face inference router (OpenAI-compatible)
	ProviderHuggingFace Provider = "huggingface"
	// ProviderOpenAI is any other OpenAI-compatible chat completion endpoint
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// Defaults for the Hugging Face router.
const (
	DefaultBaseURL = "https://router.huggingface.co/v1"
	DefaultModel   = "ServiceNow-AI/Apriel-1.6-15b-Thinker:together"
	DefaultTimeout = 120 * time.Second
)

// DefaultGeminiModel is used when the Gemini provider has no model configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Model    string
	// BaseURL is the chat completion API root; /chat/completions is appended.
	BaseURL string
	// Timeout bounds a single HTTP request. Callers usually apply their own deadline as well.
	Timeout time.Duration
	// MaxRetries is how many times a 429 response is retried with backoff.
	// Zero sends each prompt exactly once.
	MaxRetries int
	// Backoff is the initial retry delay; it grows 5x per attempt.
	Backoff time.Duration
}

// DefaultConfig returns the default configuration (Hugging Face router)
func DefaultConfig() *Config {
	return &Config{
		Provider:   ProviderHuggingFace,
		Model:      DefaultModel,
		BaseURL:    DefaultBaseURL,
		Timeout:    DefaultTimeout,
		MaxRetries: 0,
		Backoff:    500 * time.Millisecond,
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Model:    DefaultGeminiModel,
		Timeout:  DefaultTimeout,
	}
}

// ModelName returns the configured model or the provider default.
func (c *Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	if c.Provider == ProviderGemini {
		return DefaultGeminiModel
	}
	return DefaultModel
}

// WithModel returns a copy of the config using model.
func (c *Config) WithModel(model string) *Config {
	cp := *c
	cp.Model = model
	return &cp
}
