// Package llm - chat.go implements Client against OpenAI-compatible chat completion APIs.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/career-finder/internal/schemas"
)

// ErrEmptyCompletion is returned when the provider answers without any text.
var ErrEmptyCompletion = errors.New("completion has no text content")

// maxErrorBody caps how much of an error response is kept for the message.
const maxErrorBody = 512

// StatusError is a non-2xx response from the completion endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("chat completion returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("chat completion returned status %d", e.StatusCode)
}

type chatContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type chatMessage struct {
	Role    string            `json:"role"`
	Content []chatContentPart `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatClient posts to <BaseURL>/chat/completions with a bearer token.
type ChatClient struct {
	config *Config
	token  string
	http   *http.Client
}

// NewChatClient creates a chat completion client. The token is sent as a
// bearer credential on every request.
func NewChatClient(config *Config, token string) (*ChatClient, error) {
	if token == "" {
		return nil, fmt.Errorf("API token is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ChatClient{
		config: config,
		token:  token,
		http:   &http.Client{Timeout: timeout},
	}, nil
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *ChatClient) WithHTTPClient(hc *http.Client) *ChatClient {
	c.http = hc
	return c
}

// Model returns the model name sent with each request.
func (c *ChatClient) Model() string {
	return c.config.ModelName()
}

// Close is a no-op; the HTTP client holds no dedicated resources.
func (c *ChatClient) Close() error {
	return nil
}

func (c *ChatClient) endpoint() string {
	base := c.config.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimSuffix(base, "/") + "/chat/completions"
}

// GenerateContent sends parts as the content segments of one user message and
// returns choices[0].message.content verbatim.
func (c *ChatClient) GenerateContent(ctx context.Context, parts []string) (string, error) {
	if len(parts) == 0 {
		return "", fmt.Errorf("no prompt parts")
	}

	content := make([]chatContentPart, 0, len(parts))
	for _, p := range parts {
		content = append(content, chatContentPart{Type: "text", Text: p})
	}

	body, err := json.Marshal(chatRequest{
		Model:    c.Model(),
		Messages: []chatMessage{{Role: "user", Content: content}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	raw, err := c.post(ctx, body)
	if err != nil {
		return "", err
	}

	if err := schemas.Validate(schemas.ChatCompletion, raw); err != nil {
		return "", fmt.Errorf("malformed completion response: %w", err)
	}

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// post sends the request, retrying 429 responses with growing backoff.
func (c *ChatClient) post(ctx context.Context, body []byte) ([]byte, error) {
	backoff := c.config.Backoff
	for attempt := 0; ; attempt++ {
		raw, err := c.do(ctx, body)
		var statusErr *StatusError
		if err == nil || !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests || attempt >= c.config.MaxRetries {
			return raw, err
		}

		if backoff <= 0 {
			backoff = 500 * time.Millisecond
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 5
	}
}

func (c *ChatClient) do(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(raw))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}

	return raw, nil
}
