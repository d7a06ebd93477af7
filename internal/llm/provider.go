// Package llm provides a unified interface over the interchangeable chat
// backends (OpenAI, Claude, Gemini, Perplexity). The backends differ only in
// the HTTP call they make; prompt construction, response parsing, and all
// fallback policy live in the analysis layer above.
package llm

import (
	"context"
	"errors"
	"time"
)

// Provider names for configuration and routing.
const (
	ProviderOpenAI     = "openai"
	ProviderClaude     = "claude"
	ProviderGoogle     = "google"
	ProviderPerplexity = "perplexity"
)

// Common errors returned by LLM backends.
var (
	ErrNoAPIKey      = errors.New("llm: API key not configured")
	ErrRateLimit     = errors.New("llm: rate limit exceeded")
	ErrProviderDown  = errors.New("llm: provider unavailable")
	ErrEmptyResponse = errors.New("llm: empty response")
)

// Request is a single system-instruction + user-prompt completion request.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Provider is the contract every backend implements: send one prompt,
// return the raw response text.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai", "claude").
	Name() string

	// Complete sends the request and returns the model's raw text reply.
	Complete(ctx context.Context, req Request) (string, error)
}

// Config holds the common settings for constructing a backend.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string        // optional override; each backend has its default
	Timeout time.Duration // HTTP client timeout; defaults to 60s
}

// New constructs the backend selected by name. Unrecognized names fall back
// to OpenAI, matching the configuration contract.
func New(name string, cfg Config) (Provider, error) {
	switch name {
	case ProviderClaude:
		return NewClaudeProvider(cfg)
	case ProviderGoogle:
		return NewGeminiProvider(cfg)
	case ProviderPerplexity:
		return NewPerplexityProvider(cfg)
	default:
		return NewOpenAIProvider(cfg)
	}
}

func defaultTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 60 * time.Second
	}
	return d
}
