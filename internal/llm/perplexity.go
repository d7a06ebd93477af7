package llm

import (
	"net/http"
	"strings"
)

// NewPerplexityProvider creates a Perplexity provider. Perplexity exposes an
// OpenAI-compatible Chat Completions endpoint, so the provider reuses the
// OpenAI wire format with a different base URL. The json_object response
// format is not requested because the endpoint rejects it.
func NewPerplexityProvider(cfg Config) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	p := &OpenAIProvider{
		apiKey:   cfg.APIKey,
		baseURL:  "https://api.perplexity.ai",
		model:    "sonar",
		client:   &http.Client{Timeout: defaultTimeout(cfg.Timeout)},
		name:     ProviderPerplexity,
		jsonMode: false,
	}
	if cfg.BaseURL != "" {
		p.baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Model != "" {
		p.model = cfg.Model
	}
	return p, nil
}
