// daysignal — daily news + market signal pipeline
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/seenimoa/daysignal/internal/analyze"
	"github.com/seenimoa/daysignal/internal/config"
	"github.com/seenimoa/daysignal/internal/datasource"
	"github.com/seenimoa/daysignal/internal/history"
	"github.com/seenimoa/daysignal/internal/llm"
	"github.com/seenimoa/daysignal/internal/notify"
	"github.com/seenimoa/daysignal/internal/pipeline"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config, loaded by the root command before any subcommand runs.
var (
	cfg    *config.Config
	logger log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "daysignal",
	Short: "daysignal — daily news + market signal for a single stock",
	Long: `daysignal collects recent news and daily price data for one stock,
computes technical indicators, asks an AI provider for a structured
read of the combined evidence, and emits a deterministic trading
signal with a plain-text report.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		logger = config.NewLogger(cfg.Logging)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(backtestCmd)
	rootCmd.AddCommand(keysCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("daysignal %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daily signal pipeline and print the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		if problems := cfg.Validate(); len(problems) > 0 {
			for _, p := range problems {
				logger.Error().Msg(p)
			}
			return fmt.Errorf("configuration invalid (%d problems)", len(problems))
		}

		apiKey, model := cfg.ProviderCredentials()
		backend, err := llm.New(cfg.AI.Provider, llm.Config{APIKey: apiKey, Model: model})
		if err != nil {
			logger.Warn().Err(err).Str("provider", cfg.AI.Provider).
				Msg("AI backend unavailable, falling back to rule-based analysis")
			backend = nil
		}
		analyzer := analyze.New(backend, analyze.Options{
			Topic:               cfg.Signal.Topic,
			Ticker:              cfg.Signal.Ticker,
			ConfidenceThreshold: cfg.AI.ConfidenceThreshold,
		}, logger)

		var notifier pipeline.Notifier
		telegram := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
		if telegram.Configured() {
			notifier = telegram
		}

		lookback := time.Duration(cfg.News.LookbackHours) * time.Hour
		p := pipeline.New(pipeline.Options{
			Topic:    cfg.Signal.Topic,
			Ticker:   cfg.Signal.Ticker,
			News:     datasource.NewNews(cfg.News.APIKey, lookback, logger),
			Market:   datasource.NewYahoo(logger),
			Analyzer: analyzer,
			Store:    history.NewStore(cfg.Signal.DataDir, logger),
			Notifier: notifier,
		}, logger)

		res, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(res.Report)
		return nil
	},
}

// --- History Command ---

var historyCmd = &cobra.Command{
	Use:   "history [ticker]",
	Short: "Show past predictions from the signal history log",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := cfg.Signal.Ticker
		if len(args) == 1 {
			ticker = strings.ToUpper(args[0])
		}

		store := history.NewStore(cfg.Signal.DataDir, logger)
		records := store.ByTicker(ticker)
		fmt.Printf("Past predictions for %s (%s)\n\n", ticker, store.Path())
		fmt.Println(history.FormatHistoryTable(records))
		return nil
	},
}

// --- Backtest Command ---

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Grade past predictions against next-day closes",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := history.NewStore(cfg.Signal.DataDir, logger)
		bt := history.NewBacktester(store, datasource.NewYahoo(logger), logger)

		evals := bt.Run(cmd.Context())
		fmt.Println(history.FormatResults(evals))
		return nil
	},
}

// --- Keys Command ---

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Show API key configuration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("  %-22s %s\n", k.Name+":", status)
		}
		return nil
	},
}
