package config

import "os"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name   string       `json:"name"`
	Source APIKeySource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "sk-...abc"
}

// CheckAPIKeys returns the status of all configurable API keys.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("OpenAI API Key", cfg.AI.OpenAIKey, "OPENAI_API_KEY"),
		checkKey("Claude API Key", cfg.AI.ClaudeKey, "CLAUDE_API_KEY"),
		checkKey("Google API Key", cfg.AI.GoogleKey, "GOOGLE_API_KEY"),
		checkKey("Perplexity API Key", cfg.AI.PerplexityKey, "PERPLEXITY_API_KEY"),
		checkKey("NewsAPI Key", cfg.News.APIKey, "NEWSAPI_KEY"),
		checkKey("Telegram Bot Token", cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN"),
	}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value, envVar string) KeyStatus {
	status := KeyStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value != "" {
		if os.Getenv(envVar) != "" {
			status.Source = KeySourceEnv
		} else {
			status.Source = KeySourceConfig
		}
		status.Masked = maskKey(value)
	} else {
		status.Source = KeySourceNone
	}

	return status
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
