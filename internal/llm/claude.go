package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ClaudeProvider implements Provider for Anthropic's Messages API.
type ClaudeProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewClaudeProvider creates a Claude provider.
func NewClaudeProvider(cfg Config) (*ClaudeProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	p := &ClaudeProvider{
		apiKey:  cfg.APIKey,
		baseURL: "https://api.anthropic.com/v1",
		model:   "claude-3-5-haiku-20241022",
		client:  &http.Client{Timeout: defaultTimeout(cfg.Timeout)},
	}
	if cfg.BaseURL != "" {
		p.baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Model != "" {
		p.model = cfg.Model
	}
	return p, nil
}

func (p *ClaudeProvider) Name() string { return ProviderClaude }

// Complete sends a messages request and returns the concatenated text blocks.
func (p *ClaudeProvider) Complete(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	body := claudeRequest{
		Model:     p.model,
		System:    req.System,
		MaxTokens: maxTokens,
		Messages: []claudeMessage{
			{Role: "user", Content: req.Prompt},
		},
	}
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("claude: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/messages", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderDown, err)
	}
	defer resp.Body.Close()

	if err := p.checkError(resp); err != nil {
		return "", err
	}

	var result claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("claude: decode response: %w", err)
	}

	var parts []string
	for _, block := range result.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	text := strings.Join(parts, "")
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// ── Internal Types ──

type claudeRequest struct {
	Model       string          `json:"model"`
	Messages    []claudeMessage `json:"messages"`
	System      string          `json:"system,omitempty"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	ID         string               `json:"id"`
	Model      string               `json:"model"`
	Content    []claudeContentBlock `json:"content"`
	StopReason string               `json:"stop_reason"`
}

type claudeContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type claudeErrorResponse struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ── Helpers ──

func (p *ClaudeProvider) checkError(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr claudeErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrNoAPIKey, apiErr.Error.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimit, apiErr.Error.Message)
		}
		return fmt.Errorf("claude: API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
	}
	return fmt.Errorf("claude: HTTP %d: %s", resp.StatusCode, string(body))
}
