package analyze

import (
	"encoding/json"
	"fmt"

	"github.com/seenimoa/daysignal/pkg/models"
)

// maxHeadlines caps how many articles are embedded in the prompt.
const maxHeadlines = 30

const promptTemplate = `You are a financial analyst assistant. Analyze the following news headlines and market data for %s (%s).

NEWS HEADLINES:
%s

MARKET INDICATORS:
%s

Based on the above, produce a JSON object with EXACTLY this schema (no extra keys, no markdown fences):
{
  "news_sentiment": "positive" | "negative" | "mixed" | "neutral",
  "key_drivers": ["string", ...],
  "risk_factors": ["string", ...],
  "directional_bias": "likely_up" | "likely_down" | "uncertain",
  "confidence_0_100": <integer 0-100>,
  "one_paragraph_rationale": "string"
}

Rules:
- key_drivers: 1-5 bullet strings summarizing positive/negative catalysts
- risk_factors: 1-5 bullet strings summarizing risks
- confidence_0_100: your confidence in the directional_bias (0=no idea, 100=certain)
- one_paragraph_rationale: 2-4 sentences explaining your reasoning
- Return ONLY the JSON object. No markdown, no explanation outside the JSON.`

const strictRetrySuffix = "\n\nCRITICAL: Your previous response was not valid JSON. You MUST return ONLY a raw JSON object.\n" +
	"Do NOT wrap it in ```json``` or any markdown. Do NOT add any text before or after the JSON.\n" +
	"The response must start with { and end with }."

// promptHeadline is the per-article shape embedded in the prompt.
type promptHeadline struct {
	Title     string `json:"title"`
	Source    string `json:"source"`
	Published string `json:"published"`
	URL       string `json:"url"`
}

// promptMarket mirrors MarketData without the prices_available bookkeeping
// field, which is not part of the analysis contract.
type promptMarket struct {
	Ticker        string  `json:"ticker"`
	LastClose     float64 `json:"last_close"`
	LastCloseDate string  `json:"last_close_date"`
	SMA7          float64 `json:"sma_7"`
	SMA21         float64 `json:"sma_21"`
	CloseVsSMA7   string  `json:"close_vs_sma7"`
	Return7DPct   float64 `json:"return_7d_pct"`
	RSI14         float64 `json:"rsi_14"`
	BBUpper       float64 `json:"bb_upper"`
	BBMiddle      float64 `json:"bb_middle"`
	BBLower       float64 `json:"bb_lower"`
	BBPosition    string  `json:"bb_position"`
	Vol10DAvg     float64 `json:"vol_10d_avg"`
	VolVsAvg      string  `json:"vol_vs_avg"`
}

func buildPrompt(articles []models.Article, market models.MarketData, topic, ticker string) string {
	n := len(articles)
	if n > maxHeadlines {
		n = maxHeadlines
	}
	headlines := make([]promptHeadline, 0, n)
	for _, a := range articles[:n] {
		headlines = append(headlines, promptHeadline{
			Title:     a.Title,
			Source:    a.Source,
			Published: a.Published,
			URL:       a.URL,
		})
	}

	headJSON, _ := json.MarshalIndent(headlines, "", "  ")
	marketJSON, _ := json.MarshalIndent(promptMarket{
		Ticker:        market.Ticker,
		LastClose:     market.LastClose,
		LastCloseDate: market.LastCloseDate,
		SMA7:          market.SMA7,
		SMA21:         market.SMA21,
		CloseVsSMA7:   market.CloseVsSMA7,
		Return7DPct:   market.Return7DPct,
		RSI14:         market.RSI14,
		BBUpper:       market.BBUpper,
		BBMiddle:      market.BBMiddle,
		BBLower:       market.BBLower,
		BBPosition:    market.BBPosition,
		Vol10DAvg:     market.Vol10DAvg,
		VolVsAvg:      market.VolVsAvg,
	}, "", "  ")

	return fmt.Sprintf(promptTemplate, topic, ticker, headJSON, marketJSON)
}

func buildStrictRetryPrompt(articles []models.Article, market models.MarketData, topic, ticker string) string {
	return buildPrompt(articles, market, topic, ticker) + strictRetrySuffix
}
