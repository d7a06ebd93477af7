// Package analyze turns news headlines and market indicators into a typed
// AnalysisResult via a pluggable LLM backend. All four backends share the
// same prompt, parser, retry, and fallback logic; only the HTTP call differs.
package analyze

import (
	"context"

	"github.com/phuslu/log"

	"github.com/seenimoa/daysignal/internal/llm"
	"github.com/seenimoa/daysignal/pkg/models"
)

const (
	systemPrompt = "You are a financial analyst. Respond only with valid JSON."

	maxAttempts = 2
	temperature = 0.3
	maxTokens   = 1000
)

// Options carries the per-run analysis parameters.
type Options struct {
	Topic  string
	Ticker string
	// ConfidenceThreshold overrides the directional bias to "uncertain"
	// whenever the result's confidence is strictly below it.
	ConfidenceThreshold int
}

// Analyzer produces an AnalysisResult from articles and market data. A nil
// backend is legal: every run then takes the rule-based fallback path.
type Analyzer struct {
	backend llm.Provider
	opts    Options
	log     log.Logger
}

// New creates an Analyzer around the given backend.
func New(backend llm.Provider, opts Options, logger log.Logger) *Analyzer {
	return &Analyzer{backend: backend, opts: opts, log: logger}
}

// Analyze runs the AI analysis. It never returns an error: a backend failure
// or a second unparseable reply degrades to the rule-based fallback, and the
// confidence-threshold override applies to whichever result is produced.
func (a *Analyzer) Analyze(ctx context.Context, articles []models.Article, market models.MarketData) models.AnalysisResult {
	if a.backend == nil {
		a.log.Warn().Msg("no AI backend configured, using rule-based fallback")
		return a.applyThreshold(ruleBasedFallback(articles, market))
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		prompt := buildPrompt(articles, market, a.opts.Topic, a.opts.Ticker)
		if attempt > 1 {
			prompt = buildStrictRetryPrompt(articles, market, a.opts.Topic, a.opts.Ticker)
		}

		a.log.Info().
			Str("provider", a.backend.Name()).
			Int("attempt", attempt).
			Msg("calling AI backend")

		raw, err := a.backend.Complete(ctx, llm.Request{
			System:      systemPrompt,
			Prompt:      prompt,
			Temperature: temperature,
			MaxTokens:   maxTokens,
		})
		if err != nil {
			a.log.Error().Err(err).Int("attempt", attempt).Msg("AI backend call failed")
			continue
		}

		result, err := parseAnalysis(raw)
		if err != nil {
			a.log.Warn().Err(err).Int("attempt", attempt).Msg("AI reply was not valid JSON")
			continue
		}

		result = a.applyThreshold(result)
		a.log.Info().
			Str("sentiment", result.NewsSentiment).
			Str("bias", result.DirectionalBias).
			Int("confidence", result.Confidence).
			Msg("AI analysis complete")
		return result
	}

	a.log.Warn().Msg("AI analysis failed twice, using rule-based fallback")
	return a.applyThreshold(ruleBasedFallback(articles, market))
}

// applyThreshold replaces the directional bias with "uncertain" when the
// confidence is strictly below the configured threshold. Evidence fields,
// including the confidence itself, are untouched.
func (a *Analyzer) applyThreshold(r models.AnalysisResult) models.AnalysisResult {
	if r.Confidence < a.opts.ConfidenceThreshold {
		a.log.Info().
			Int("confidence", r.Confidence).
			Int("threshold", a.opts.ConfidenceThreshold).
			Msg("confidence below threshold, overriding bias to uncertain")
		return r.WithBias(models.BiasUncertain)
	}
	return r
}
