// Package config handles configuration loading for daysignal.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/phuslu/log"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Signal   SignalConfig   `mapstructure:"signal"   yaml:"signal"`
	AI       AIConfig       `mapstructure:"ai"       yaml:"ai"`
	News     NewsConfig     `mapstructure:"news"     yaml:"news"`
	Telegram TelegramConfig `mapstructure:"telegram" yaml:"telegram"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// SignalConfig holds the core pipeline parameters.
type SignalConfig struct {
	Topic   string `mapstructure:"topic"    yaml:"topic"`
	Ticker  string `mapstructure:"ticker"   yaml:"ticker"`
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
}

// AIConfig holds AI provider selection and per-provider credentials.
type AIConfig struct {
	Provider            string `mapstructure:"provider"             yaml:"provider"` // "openai", "claude", "google", "perplexity"
	ConfidenceThreshold int    `mapstructure:"confidence_threshold" yaml:"confidence_threshold"`
	OpenAIKey           string `mapstructure:"openai_key"           yaml:"openai_key"`
	OpenAIModel         string `mapstructure:"openai_model"         yaml:"openai_model"`
	ClaudeKey           string `mapstructure:"claude_key"           yaml:"claude_key"`
	ClaudeModel         string `mapstructure:"claude_model"         yaml:"claude_model"`
	GoogleKey           string `mapstructure:"google_key"           yaml:"google_key"`
	GoogleModel         string `mapstructure:"google_model"         yaml:"google_model"`
	PerplexityKey       string `mapstructure:"perplexity_key"       yaml:"perplexity_key"`
	PerplexityModel     string `mapstructure:"perplexity_model"     yaml:"perplexity_model"`
}

// NewsConfig holds news ingestion settings.
type NewsConfig struct {
	APIKey        string `mapstructure:"api_key"        yaml:"api_key"` // NewsAPI.org; RSS fallback when empty
	LookbackHours int    `mapstructure:"lookback_hours" yaml:"lookback_hours"`
}

// TelegramConfig holds the optional notification sink credentials.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token" yaml:"bot_token"`
	ChatID   string `mapstructure:"chat_id"   yaml:"chat_id"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.daysignal/config.yaml (home directory)
//  3. /etc/daysignal/config.yaml (system)
//
// A .env file in the working directory is loaded first if present.
// Environment variables override config file values.
// Format: DAYSIGNAL_<SECTION>_<KEY>, e.g., DAYSIGNAL_AI_OPENAI_KEY.
func Load() (*Config, error) {
	// Not an error if absent.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".daysignal"))
	v.AddConfigPath("/etc/daysignal")

	v.SetEnvPrefix("DAYSIGNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("DAYSIGNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// Validate returns a list of problems (empty = OK). Each problem names the
// setting to fix.
func (c *Config) Validate() []string {
	var problems []string

	switch c.AI.Provider {
	case "claude":
		if c.AI.ClaudeKey == "" {
			problems = append(problems, "CLAUDE_API_KEY is not set.")
		}
	case "google":
		if c.AI.GoogleKey == "" {
			problems = append(problems, "GOOGLE_API_KEY is not set.")
		}
	case "perplexity":
		if c.AI.PerplexityKey == "" {
			problems = append(problems, "PERPLEXITY_API_KEY is not set.")
		}
	default:
		// Unknown providers fall through to OpenAI.
		if c.AI.OpenAIKey == "" {
			problems = append(problems, "OPENAI_API_KEY is not set.")
		}
	}

	if c.Signal.Ticker == "" {
		problems = append(problems, "ticker is not set (signal.ticker or DAYSIGNAL_SIGNAL_TICKER).")
	}
	if c.Signal.Topic == "" {
		problems = append(problems, "topic is not set (signal.topic or DAYSIGNAL_SIGNAL_TOPIC).")
	}
	if c.AI.ConfidenceThreshold < 0 || c.AI.ConfidenceThreshold > 100 {
		problems = append(problems, fmt.Sprintf("ai.confidence_threshold must be in [0,100], got %d.", c.AI.ConfidenceThreshold))
	}
	if c.News.LookbackHours <= 0 {
		problems = append(problems, fmt.Sprintf("news.lookback_hours must be positive, got %d.", c.News.LookbackHours))
	}
	return problems
}

// ProviderCredentials returns the API key and model for the configured
// provider. Unknown providers resolve to the OpenAI credentials.
func (c *Config) ProviderCredentials() (apiKey, model string) {
	switch c.AI.Provider {
	case "claude":
		return c.AI.ClaudeKey, c.AI.ClaudeModel
	case "google":
		return c.AI.GoogleKey, c.AI.GoogleModel
	case "perplexity":
		return c.AI.PerplexityKey, c.AI.PerplexityModel
	default:
		return c.AI.OpenAIKey, c.AI.OpenAIModel
	}
}

// NewLogger builds a logger from the logging settings. "text" gets a console
// writer, anything else emits JSON lines.
func NewLogger(cfg LoggingConfig) log.Logger {
	logger := log.Logger{
		Level:      log.ParseLevel(cfg.Level),
		TimeFormat: "15:04:05",
	}
	if cfg.Format == "text" {
		logger.Writer = &log.ConsoleWriter{ColorOutput: true}
	}
	return logger
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("signal.topic", "Microsoft")
	v.SetDefault("signal.ticker", "MSFT")
	v.SetDefault("signal.data_dir", "data")

	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.confidence_threshold", 40)
	v.SetDefault("ai.openai_model", "gpt-4o-mini")
	v.SetDefault("ai.claude_model", "claude-3-5-haiku-20241022")
	v.SetDefault("ai.google_model", "gemini-1.5-flash")
	v.SetDefault("ai.perplexity_model", "sonar")

	v.SetDefault("news.lookback_hours", 24)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv reads the conventional unprefixed variable names (the ones
// a .env file typically carries) for sensitive values.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.AI.OpenAIKey = key
	}
	if key := os.Getenv("CLAUDE_API_KEY"); key != "" {
		cfg.AI.ClaudeKey = key
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		cfg.AI.GoogleKey = key
	}
	if key := os.Getenv("PERPLEXITY_API_KEY"); key != "" {
		cfg.AI.PerplexityKey = key
	}
	if key := os.Getenv("NEWSAPI_KEY"); key != "" {
		cfg.News.APIKey = key
	}
	if key := os.Getenv("TELEGRAM_BOT_TOKEN"); key != "" {
		cfg.Telegram.BotToken = key
	}
	if key := os.Getenv("TELEGRAM_CHAT_ID"); key != "" {
		cfg.Telegram.ChatID = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
