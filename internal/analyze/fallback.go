package analyze

import (
	"fmt"

	"github.com/seenimoa/daysignal/pkg/models"
)

// fallbackConfidence is the fixed confidence of the rule-based heuristic;
// it is low by construction.
const fallbackConfidence = 25

// ruleBasedFallback builds an AnalysisResult from the trend indicators alone,
// used when no AI backend is available or both attempts fail. Pure function.
func ruleBasedFallback(articles []models.Article, market models.MarketData) models.AnalysisResult {
	var bias, sentiment string
	switch {
	case market.CloseVsSMA7 == models.CloseAbove && market.Return7DPct > 0:
		bias, sentiment = models.BiasLikelyUp, models.SentimentPositive
	case market.CloseVsSMA7 == models.CloseBelow && market.Return7DPct < 0:
		bias, sentiment = models.BiasLikelyDown, models.SentimentNegative
	default:
		bias, sentiment = models.BiasUncertain, models.SentimentMixed
	}

	return models.AnalysisResult{
		NewsSentiment: sentiment,
		KeyDrivers: []string{
			fmt.Sprintf("7-day return: %v%%", market.Return7DPct),
			fmt.Sprintf("Price vs 7d SMA: %s", market.CloseVsSMA7),
		},
		RiskFactors:     []string{"AI analysis unavailable - using basic trend only"},
		DirectionalBias: bias,
		Confidence:      fallbackConfidence,
		Rationale: fmt.Sprintf(
			"Rule-based fallback: The stock is trading %s its 7-day SMA with a %v%% weekly return. "+
				"Without AI sentiment analysis of %d news articles, confidence is low.",
			market.CloseVsSMA7, market.Return7DPct, len(articles)),
	}
}
