package analyze

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/phuslu/log"

	"github.com/seenimoa/daysignal/internal/llm"
	"github.com/seenimoa/daysignal/pkg/models"
)

var testLogger = log.Logger{Level: log.PanicLevel}

func testMarket() models.MarketData {
	return models.MarketData{
		Ticker:        "MSFT",
		LastClose:     430.50,
		LastCloseDate: "2025-06-02",
		SMA7:          425.10,
		SMA21:         418.33,
		CloseVsSMA7:   models.CloseAbove,
		Return7DPct:   2.15,
		RSI14:         61.24,
		BBUpper:       440.12,
		BBMiddle:      420.55,
		BBLower:       400.98,
		BBPosition:    models.BBInside,
		Vol10DAvg:     21000000,
		VolVsAvg:      models.VolumeNormal,
	}
}

// scriptedBackend replays canned replies or errors, one per Complete call.
type scriptedBackend struct {
	replies []string
	errs    []error
	prompts []string
	calls   int
}

func (s *scriptedBackend) Name() string { return "scripted" }

func (s *scriptedBackend) Complete(_ context.Context, req llm.Request) (string, error) {
	i := s.calls
	s.calls++
	s.prompts = append(s.prompts, req.Prompt)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

const goodReply = `{
  "news_sentiment": "positive",
  "key_drivers": ["strong earnings", "cloud growth"],
  "risk_factors": ["valuation"],
  "directional_bias": "likely_up",
  "confidence_0_100": 80,
  "one_paragraph_rationale": "Momentum and sentiment both point up."
}`

func TestParseAnalysisValid(t *testing.T) {
	got, err := parseAnalysis(goodReply)
	if err != nil {
		t.Fatalf("parseAnalysis: %v", err)
	}
	want := models.AnalysisResult{
		NewsSentiment:   "positive",
		KeyDrivers:      []string{"strong earnings", "cloud growth"},
		RiskFactors:     []string{"valuation"},
		DirectionalBias: "likely_up",
		Confidence:      80,
		Rationale:       "Momentum and sentiment both point up.",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseAnalysis = %+v, want %+v", got, want)
	}
}

func TestParseAnalysisFencedEqualsUnfenced(t *testing.T) {
	plain, err := parseAnalysis(goodReply)
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	for _, fenced := range []string{
		"```json\n" + goodReply + "\n```",
		"```\n" + goodReply + "\n```",
	} {
		got, err := parseAnalysis(fenced)
		if err != nil {
			t.Fatalf("fenced: %v", err)
		}
		if !reflect.DeepEqual(got, plain) {
			t.Errorf("fenced parse = %+v, want %+v", got, plain)
		}
	}
}

func TestParseAnalysisMalformed(t *testing.T) {
	if _, err := parseAnalysis("the stock looks good to me"); err == nil {
		t.Error("malformed text parsed without error")
	}
	if _, err := parseAnalysis(""); err == nil {
		t.Error("empty text parsed without error")
	}
}

func TestParseAnalysisCoercion(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, r models.AnalysisResult)
	}{
		{
			name: "confidence above range clamps to 100",
			raw:  `{"directional_bias":"likely_up","confidence_0_100":150}`,
			check: func(t *testing.T, r models.AnalysisResult) {
				if r.Confidence != 100 {
					t.Errorf("confidence = %d, want 100", r.Confidence)
				}
			},
		},
		{
			name: "negative confidence clamps to 0",
			raw:  `{"confidence_0_100":-5}`,
			check: func(t *testing.T, r models.AnalysisResult) {
				if r.Confidence != 0 {
					t.Errorf("confidence = %d, want 0", r.Confidence)
				}
			},
		},
		{
			name: "non-numeric confidence defaults to 50",
			raw:  `{"confidence_0_100":"high"}`,
			check: func(t *testing.T, r models.AnalysisResult) {
				if r.Confidence != 50 {
					t.Errorf("confidence = %d, want 50", r.Confidence)
				}
			},
		},
		{
			name: "unknown sentiment coerces to neutral",
			raw:  `{"news_sentiment":"euphoric"}`,
			check: func(t *testing.T, r models.AnalysisResult) {
				if r.NewsSentiment != models.SentimentNeutral {
					t.Errorf("sentiment = %q, want neutral", r.NewsSentiment)
				}
			},
		},
		{
			name: "unknown bias coerces to uncertain",
			raw:  `{"directional_bias":"to_the_moon"}`,
			check: func(t *testing.T, r models.AnalysisResult) {
				if r.DirectionalBias != models.BiasUncertain {
					t.Errorf("bias = %q, want uncertain", r.DirectionalBias)
				}
			},
		},
		{
			name: "scalar drivers become a singleton list",
			raw:  `{"key_drivers":"earnings beat"}`,
			check: func(t *testing.T, r models.AnalysisResult) {
				if !reflect.DeepEqual(r.KeyDrivers, []string{"earnings beat"}) {
					t.Errorf("key_drivers = %v", r.KeyDrivers)
				}
			},
		},
		{
			name: "long lists truncate to five stringified entries",
			raw:  `{"risk_factors":["a","b","c",4,"e","f","g"]}`,
			check: func(t *testing.T, r models.AnalysisResult) {
				if !reflect.DeepEqual(r.RiskFactors, []string{"a", "b", "c", "4", "e"}) {
					t.Errorf("risk_factors = %v", r.RiskFactors)
				}
			},
		},
		{
			name: "missing rationale gets placeholder",
			raw:  `{}`,
			check: func(t *testing.T, r models.AnalysisResult) {
				if r.Rationale != defaultRationale {
					t.Errorf("rationale = %q", r.Rationale)
				}
				if len(r.KeyDrivers) != 0 || len(r.RiskFactors) != 0 {
					t.Errorf("missing lists not empty: %v %v", r.KeyDrivers, r.RiskFactors)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := parseAnalysis(tt.raw)
			if err != nil {
				t.Fatalf("parseAnalysis(%q): %v", tt.raw, err)
			}
			tt.check(t, r)
		})
	}
}

func TestConfidenceThresholdOverride(t *testing.T) {
	base := models.AnalysisResult{
		NewsSentiment:   models.SentimentPositive,
		KeyDrivers:      []string{"d"},
		RiskFactors:     []string{"r"},
		DirectionalBias: models.BiasLikelyUp,
		Confidence:      39,
		Rationale:       "text",
	}

	a := New(nil, Options{ConfidenceThreshold: 40}, testLogger)

	got := a.applyThreshold(base)
	if got.DirectionalBias != models.BiasUncertain {
		t.Errorf("bias = %q, want uncertain below threshold", got.DirectionalBias)
	}
	// Only the bias changes.
	want := base.WithBias(models.BiasUncertain)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("override changed more than the bias: %+v", got)
	}
	if base.DirectionalBias != models.BiasLikelyUp {
		t.Error("override mutated the original value")
	}

	// Equal to the threshold: unchanged (strict inequality).
	base.Confidence = 40
	if got := a.applyThreshold(base); got.DirectionalBias != models.BiasLikelyUp {
		t.Errorf("bias at threshold = %q, want likely_up", got.DirectionalBias)
	}
}

func TestRuleBasedFallback(t *testing.T) {
	up := testMarket() // above SMA, positive return
	r := ruleBasedFallback(nil, up)
	if r.DirectionalBias != models.BiasLikelyUp || r.NewsSentiment != models.SentimentPositive {
		t.Errorf("uptrend fallback = (%s, %s)", r.DirectionalBias, r.NewsSentiment)
	}
	if r.Confidence != fallbackConfidence {
		t.Errorf("confidence = %d, want %d", r.Confidence, fallbackConfidence)
	}

	down := testMarket()
	down.CloseVsSMA7 = models.CloseBelow
	down.Return7DPct = -1.2
	r = ruleBasedFallback(nil, down)
	if r.DirectionalBias != models.BiasLikelyDown || r.NewsSentiment != models.SentimentNegative {
		t.Errorf("downtrend fallback = (%s, %s)", r.DirectionalBias, r.NewsSentiment)
	}

	mixed := testMarket()
	mixed.Return7DPct = -0.5 // above SMA but negative return
	r = ruleBasedFallback(nil, mixed)
	if r.DirectionalBias != models.BiasUncertain || r.NewsSentiment != models.SentimentMixed {
		t.Errorf("mixed fallback = (%s, %s)", r.DirectionalBias, r.NewsSentiment)
	}
}

func TestAnalyzeRetriesWithStrictPrompt(t *testing.T) {
	backend := &scriptedBackend{replies: []string{"not json at all", goodReply}}
	a := New(backend, Options{Topic: "Microsoft", Ticker: "MSFT", ConfidenceThreshold: 40}, testLogger)

	got := a.Analyze(context.Background(), nil, testMarket())
	if got.DirectionalBias != models.BiasLikelyUp || got.Confidence != 80 {
		t.Errorf("result = %+v, want parsed second reply", got)
	}
	if backend.calls != 2 {
		t.Fatalf("backend calls = %d, want 2", backend.calls)
	}
	if strings.Contains(backend.prompts[0], "CRITICAL") {
		t.Error("first prompt already contained the strict retry instruction")
	}
	if !strings.Contains(backend.prompts[1], "CRITICAL") {
		t.Error("retry prompt missing the strict instruction")
	}
}

func TestAnalyzeFallsBackAfterTwoFailures(t *testing.T) {
	backend := &scriptedBackend{replies: []string{"garbage", "more garbage"}}
	a := New(backend, Options{Topic: "Microsoft", Ticker: "MSFT", ConfidenceThreshold: 40}, testLogger)

	got := a.Analyze(context.Background(), nil, testMarket())
	if got.Confidence != fallbackConfidence {
		t.Errorf("confidence = %d, want fallback %d", got.Confidence, fallbackConfidence)
	}
	// Fallback confidence 25 < threshold 40, so the override kicks in even
	// though the heuristic itself said likely_up.
	if got.DirectionalBias != models.BiasUncertain {
		t.Errorf("bias = %q, want uncertain after threshold override", got.DirectionalBias)
	}
}

func TestAnalyzeFallsBackOnBackendError(t *testing.T) {
	backend := &scriptedBackend{errs: []error{llm.ErrRateLimit, llm.ErrRateLimit}}
	a := New(backend, Options{Topic: "Microsoft", Ticker: "MSFT", ConfidenceThreshold: 10}, testLogger)

	got := a.Analyze(context.Background(), nil, testMarket())
	if got.Confidence != fallbackConfidence {
		t.Errorf("confidence = %d, want fallback %d", got.Confidence, fallbackConfidence)
	}
	if backend.calls != 2 {
		t.Errorf("backend calls = %d, want 2", backend.calls)
	}
}

func TestAnalyzeNilBackend(t *testing.T) {
	a := New(nil, Options{ConfidenceThreshold: 10}, testLogger)
	got := a.Analyze(context.Background(), nil, testMarket())
	if got.Confidence != fallbackConfidence {
		t.Errorf("confidence = %d, want fallback %d", got.Confidence, fallbackConfidence)
	}
}

func TestBuildPromptCapsHeadlines(t *testing.T) {
	articles := make([]models.Article, 40)
	for i := range articles {
		articles[i] = models.Article{Title: "headline", Source: "src", URL: "https://x/" + string(rune('a'+i%26))}
	}
	prompt := buildPrompt(articles, testMarket(), "Microsoft", "MSFT")
	if n := strings.Count(prompt, `"title": "headline"`); n != maxHeadlines {
		t.Errorf("prompt embeds %d headlines, want %d", n, maxHeadlines)
	}
	if !strings.Contains(prompt, `"rsi_14": 61.24`) {
		t.Error("prompt missing market indicators")
	}
	if strings.Contains(prompt, "prices_available") {
		t.Error("prompt leaked the prices_available field")
	}
	if !strings.Contains(prompt, "Microsoft (MSFT)") {
		t.Error("prompt missing topic/ticker header")
	}
}
