// Package pipeline wires one daily signal run end to end: news and market
// ingestion, indicator computation, AI analysis, signal combination, report
// rendering, history persistence, and notification.
package pipeline

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"github.com/seenimoa/daysignal/internal/analysis/technical"
	"github.com/seenimoa/daysignal/internal/report"
	"github.com/seenimoa/daysignal/internal/signal"
	"github.com/seenimoa/daysignal/pkg/models"
)

// NewsSource supplies recent articles for a topic. An empty list is a
// degraded mode, not a failure.
type NewsSource interface {
	Fetch(ctx context.Context, topic, ticker string) ([]models.Article, error)
}

// MarketSource supplies the daily price series for a ticker.
type MarketSource interface {
	DailySeries(ctx context.Context, ticker string) (models.PriceSeries, error)
}

// Analyzer produces the AI analysis for one run.
type Analyzer interface {
	Analyze(ctx context.Context, articles []models.Article, market models.MarketData) models.AnalysisResult
}

// Recorder persists and recalls past runs.
type Recorder interface {
	Append(rec models.HistoryRecord)
	ByTicker(ticker string) []models.HistoryRecord
}

// Notifier delivers the finished report. Failure is non-fatal.
type Notifier interface {
	Send(ctx context.Context, message string) bool
}

// Result is everything one run produced.
type Result struct {
	Articles []models.Article
	Market   models.MarketData
	AI       models.AnalysisResult
	Signal   models.FinalSignal
	Report   string
}

// Pipeline runs the daily signal flow. News failures degrade to an empty
// article list; market data failures abort the run, since every downstream
// step needs the indicators.
type Pipeline struct {
	topic    string
	ticker   string
	news     NewsSource
	market   MarketSource
	analyzer Analyzer
	store    Recorder
	notifier Notifier
	log      log.Logger
}

// Options collects the pipeline's collaborators. Notifier may be nil.
type Options struct {
	Topic    string
	Ticker   string
	News     NewsSource
	Market   MarketSource
	Analyzer Analyzer
	Store    Recorder
	Notifier Notifier
}

// New assembles a Pipeline.
func New(opts Options, logger log.Logger) *Pipeline {
	return &Pipeline{
		topic:    opts.Topic,
		ticker:   opts.Ticker,
		news:     opts.News,
		market:   opts.Market,
		analyzer: opts.Analyzer,
		store:    opts.Store,
		notifier: opts.Notifier,
		log:      logger,
	}
}

// Run executes one complete signal run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	articles, err := p.news.Fetch(ctx, p.topic, p.ticker)
	if err != nil {
		p.log.Error().Err(err).Msg("failed to fetch news")
		articles = nil
	}
	if len(articles) == 0 {
		p.log.Warn().Msg("no news articles found, analysis will rely on market data only")
	}

	series, err := p.market.DailySeries(ctx, p.ticker)
	if err != nil {
		return nil, fmt.Errorf("fetch market data for %s: %w", p.ticker, err)
	}
	market, err := technical.Compute(series)
	if err != nil {
		return nil, fmt.Errorf("compute indicators for %s: %w", p.ticker, err)
	}

	ai := p.analyzer.Analyze(ctx, articles, market)
	finalSignal := signal.Combine(ai, market)
	p.log.Info().Str("signal", string(finalSignal)).Msg("final signal determined")

	// Past predictions are read before this run is appended, so the report
	// shows only earlier runs.
	past := p.store.ByTicker(p.ticker)
	rendered := report.Build(report.Params{
		Topic:    p.topic,
		Ticker:   p.ticker,
		Articles: articles,
		Market:   market,
		AI:       ai,
		Signal:   finalSignal,
		Past:     past,
	})

	p.store.Append(models.NewHistoryRecord(p.topic, market, ai, finalSignal))

	if p.notifier != nil {
		p.notifier.Send(ctx, rendered)
	}

	return &Result{
		Articles: articles,
		Market:   market,
		AI:       ai,
		Signal:   finalSignal,
		Report:   rendered,
	}, nil
}
