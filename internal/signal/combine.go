// Package signal combines AI analysis with technical confirmation into a
// single discrete trading signal.
package signal

import "github.com/seenimoa/daysignal/pkg/models"

// highConvictionConfidence is the fixed cutoff for the high-conviction
// variants. It is independent of the configurable override threshold applied
// during analysis.
const highConvictionConfidence = 70

// Combine maps (analysis, market) to a FinalSignal. Pure and stateless.
//
// A directional signal requires the AI bias and the technical trend to agree:
// likely_up needs the close above its 7-day SMA with a positive 7-day return,
// likely_down the mirror image. Confidence alone never produces a direction;
// without technical confirmation the result is uncertain regardless of how
// sure the model was.
func Combine(ai models.AnalysisResult, market models.MarketData) models.FinalSignal {
	bullish := ai.DirectionalBias == models.BiasLikelyUp &&
		market.CloseVsSMA7 == models.CloseAbove &&
		market.Return7DPct > 0
	bearish := ai.DirectionalBias == models.BiasLikelyDown &&
		market.CloseVsSMA7 == models.CloseBelow &&
		market.Return7DPct < 0
	highConviction := ai.Confidence >= highConvictionConfidence

	switch {
	case bullish && highConviction:
		return models.SignalHighConvictionUp
	case bullish:
		return models.SignalLikelyUp
	case bearish && highConviction:
		return models.SignalHighConvictionDown
	case bearish:
		return models.SignalLikelyDown
	default:
		return models.SignalUncertain
	}
}
