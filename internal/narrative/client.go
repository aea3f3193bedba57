// Package narrative asks an OpenAI-compatible chat-completions service for a
// sectioned, human-readable threat analysis of a message.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// FallbackNarrative replaces the narrative when the service fails.
const FallbackNarrative = "AI analysis temporarily unavailable"

// EmptyResponse is returned when the service answers without any choice.
const EmptyResponse = "AI analysis completed but no response received"

// Supported services.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGroq       = "groq"
)

// ErrUnsupportedProvider is returned by New for an unknown service name.
var ErrUnsupportedProvider = errors.New("unsupported AI provider")

// Narrator produces a narrative for a message.
type Narrator interface {
	Analyze(ctx context.Context, message string) (string, error)
}

// Config selects the service, credentials and model.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	// BaseURL overrides the full chat-completions endpoint.
	BaseURL string
	Timeout time.Duration
}

type endpoint struct {
	url   string
	model string
}

var endpoints = map[string]endpoint{
	ProviderOpenRouter: {url: "https://openrouter.ai/api/v1/chat/completions", model: "anthropic/claude-3-haiku"},
	ProviderGroq:       {url: "https://api.groq.com/openai/v1/chat/completions", model: "llama3-8b-8192"},
}

// Client implements Narrator over HTTP.
type Client struct {
	provider string
	apiKey   string
	model    string
	url      string
	http     *http.Client
}

// New creates a client for cfg.Provider, defaulting to OpenRouter.
func New(cfg Config) (*Client, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = ProviderOpenRouter
	}
	ep, ok := endpoints[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: api key is required", name)
	}

	c := &Client{provider: name, apiKey: cfg.APIKey, model: ep.model, url: ep.url}
	if cfg.Model != "" {
		c.model = cfg.Model
	}
	if cfg.BaseURL != "" {
		c.url = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c.http = &http.Client{Timeout: timeout}
	return c, nil
}

// Model returns the model the client requests.
func (c *Client) Model() string { return c.model }

// Analyze sends message with the fixed instructions and returns the model's
// answer, followed by a link warning section when message contains
// suspicious links.
func (c *Client) Analyze(ctx context.Context, message string) (string, error) {
	body := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: BuildPrompt(message)}},
		MaxTokens:   1024,
		Temperature: 0.2,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.provider == ProviderOpenRouter {
		req.Header.Set("X-Title", "scamscan")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s request: %w", c.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s request failed: %s", c.provider, resp.Status)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding %s response: %w", c.provider, err)
	}

	text := EmptyResponse
	if len(out.Choices) > 0 && strings.TrimSpace(out.Choices[0].Message.Content) != "" {
		text = out.Choices[0].Message.Content
	}
	return appendLinkWarning(text, message), nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
