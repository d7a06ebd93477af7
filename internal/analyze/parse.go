package analyze

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/seenimoa/daysignal/pkg/models"
)

// Field defaults applied by the permissive parser.
const (
	defaultConfidence = 50
	defaultRationale  = "No rationale provided."
	maxListItems      = 5
)

// parseAnalysis parses an LLM reply into an AnalysisResult. Only malformed
// JSON is an error; every field-level problem is coerced to a safe default
// instead. A leading fenced code block (with or without a language tag) is
// stripped before parsing.
func parseAnalysis(raw string) (models.AnalysisResult, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		if i := strings.Index(text, "\n"); i >= 0 {
			text = text[i+1:]
		} else {
			text = text[3:]
		}
		if strings.HasSuffix(text, "```") {
			text = text[:len(text)-3]
		}
		text = strings.TrimSpace(text)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("parse analysis: %w", err)
	}

	sentiment := models.SentimentNeutral
	if s, ok := data["news_sentiment"].(string); ok && models.ValidSentiment(s) {
		sentiment = s
	}

	bias := models.BiasUncertain
	if b, ok := data["directional_bias"].(string); ok && models.ValidBias(b) {
		bias = b
	}

	confidence := defaultConfidence
	if f, ok := data["confidence_0_100"].(float64); ok {
		confidence = clamp(int(f), 0, 100)
	}

	rationale := defaultRationale
	if v, ok := data["one_paragraph_rationale"]; ok && v != nil {
		rationale = stringify(v)
	}

	return models.AnalysisResult{
		NewsSentiment:   sentiment,
		KeyDrivers:      coerceStringList(data["key_drivers"]),
		RiskFactors:     coerceStringList(data["risk_factors"]),
		DirectionalBias: bias,
		Confidence:      confidence,
		Rationale:       rationale,
	}, nil
}

// coerceStringList turns an arbitrary JSON value into at most maxListItems
// strings: a list has each entry stringified and is truncated, any other
// non-nil value becomes a single-entry list, and a missing value is empty.
func coerceStringList(v any) []string {
	if v == nil {
		return []string{}
	}
	items, ok := v.([]any)
	if !ok {
		return []string{stringify(v)}
	}
	if len(items) > maxListItems {
		items = items[:maxListItems]
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, stringify(item))
	}
	return out
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
