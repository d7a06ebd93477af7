package models

import "strings"

// News sentiment values the AI adapter may produce.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentMixed    = "mixed"
	SentimentNeutral  = "neutral"
)

// Directional bias values the AI adapter may produce.
const (
	BiasLikelyUp   = "likely_up"
	BiasLikelyDown = "likely_down"
	BiasUncertain  = "uncertain"
)

// ValidSentiment reports whether s is one of the four recognized sentiments.
func ValidSentiment(s string) bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentMixed, SentimentNeutral:
		return true
	}
	return false
}

// ValidBias reports whether b is one of the three recognized biases.
func ValidBias(b string) bool {
	switch b {
	case BiasLikelyUp, BiasLikelyDown, BiasUncertain:
		return true
	}
	return false
}

// AnalysisResult is the typed outcome of one AI analysis run. It is an
// immutable value: override operations return a new copy.
// The JSON field names are the exact response schema required from the LLM.
type AnalysisResult struct {
	NewsSentiment   string   `json:"news_sentiment"`
	KeyDrivers      []string `json:"key_drivers"`
	RiskFactors     []string `json:"risk_factors"`
	DirectionalBias string   `json:"directional_bias"`
	Confidence      int      `json:"confidence_0_100"`
	Rationale       string   `json:"one_paragraph_rationale"`
}

// WithBias returns a copy of the result with only the directional bias
// replaced. All evidence fields, including the confidence number, carry over.
func (r AnalysisResult) WithBias(bias string) AnalysisResult {
	r.DirectionalBias = bias
	return r
}

// FinalSignal is the discrete outcome of combining AI bias with technical
// confirmation.
type FinalSignal string

const (
	SignalHighConvictionUp   FinalSignal = "high_conviction_up"
	SignalLikelyUp           FinalSignal = "likely_up"
	SignalUncertain          FinalSignal = "uncertain"
	SignalLikelyDown         FinalSignal = "likely_down"
	SignalHighConvictionDown FinalSignal = "high_conviction_down"
)

// Bullish reports whether the signal expresses an upward prediction.
func (s FinalSignal) Bullish() bool {
	return s == SignalLikelyUp || s == SignalHighConvictionUp
}

// Bearish reports whether the signal expresses a downward prediction.
func (s FinalSignal) Bearish() bool {
	return s == SignalLikelyDown || s == SignalHighConvictionDown
}

// Directional reports whether the signal counts toward backtest accuracy
// ("uncertain" does not).
func (s FinalSignal) Directional() bool { return s.Bullish() || s.Bearish() }

// Label returns the human-readable form used in reports.
func (s FinalSignal) Label() string {
	switch s {
	case SignalHighConvictionUp:
		return "HIGH CONVICTION UP"
	case SignalLikelyUp:
		return "LIKELY UP"
	case SignalLikelyDown:
		return "LIKELY DOWN"
	case SignalHighConvictionDown:
		return "HIGH CONVICTION DOWN"
	case SignalUncertain:
		return "UNCERTAIN"
	}
	return strings.ToUpper(string(s))
}
