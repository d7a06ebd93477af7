// Package report renders a completed signal run as a plain-text report for
// the terminal and notification sinks.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/daysignal/internal/history"
	"github.com/seenimoa/daysignal/pkg/models"
)

// Disclaimer closes every report.
const Disclaimer = "DISCLAIMER: This output is for informational and educational purposes only. " +
	"It does NOT constitute financial advice, investment recommendation, or a " +
	"solicitation to buy or sell any security. Always do your own research and " +
	"consult a qualified financial advisor before making investment decisions. " +
	"Past performance is not indicative of future results."

// Params carries one completed run's outputs into the report.
type Params struct {
	Topic    string
	Ticker   string
	Articles []models.Article
	Market   models.MarketData
	AI       models.AnalysisResult
	Signal   models.FinalSignal
	// Past holds earlier predictions for the same ticker.
	Past []models.HistoryRecord
	// Now defaults to time.Now when zero.
	Now time.Time
}

// Build renders the full report.
func Build(p Params) string {
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	rule := strings.Repeat("=", 60)

	var sb strings.Builder
	sb.WriteString(rule + "\n")
	sb.WriteString("  NEWS + MARKET DAILY SIGNAL\n")
	sb.WriteString(rule + "\n\n")

	fmt.Fprintf(&sb, "Timestamp:     %s\n", now.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&sb, "Topic:         %s\n", p.Topic)
	fmt.Fprintf(&sb, "Ticker:        %s\n", p.Ticker)
	fmt.Fprintf(&sb, "Articles used: %d\n\n", len(p.Articles))

	m := p.Market
	sb.WriteString("--- MARKET INDICATORS ---\n")
	fmt.Fprintf(&sb, "Last Close:      $%v (%s)\n", m.LastClose, m.LastCloseDate)
	fmt.Fprintf(&sb, "7-Day SMA:       $%v\n", m.SMA7)
	fmt.Fprintf(&sb, "21-Day SMA:      $%v\n", m.SMA21)
	fmt.Fprintf(&sb, "Close vs 7d SMA: %s\n", strings.ToUpper(m.CloseVsSMA7))
	fmt.Fprintf(&sb, "7-Day Return:    %v%%\n", m.Return7DPct)
	fmt.Fprintf(&sb, "RSI (14):        %v%s\n", m.RSI14, rsiNote(m.RSI14))
	fmt.Fprintf(&sb, "BB Upper (20):   $%v\n", m.BBUpper)
	fmt.Fprintf(&sb, "BB Middle (20):  $%v\n", m.BBMiddle)
	fmt.Fprintf(&sb, "BB Lower (20):   $%v\n", m.BBLower)
	fmt.Fprintf(&sb, "BB Position:     %s\n", strings.ToUpper(strings.ReplaceAll(m.BBPosition, "_", " ")))
	fmt.Fprintf(&sb, "10-Day Avg Vol:  %s\n", groupThousands(int64(m.Vol10DAvg)))
	fmt.Fprintf(&sb, "Vol vs Avg:      %s\n\n", strings.ToUpper(m.VolVsAvg))

	ai := p.AI
	sb.WriteString("--- AI ANALYSIS ---\n")
	fmt.Fprintf(&sb, "News Sentiment:  %s\n", strings.ToUpper(ai.NewsSentiment))
	fmt.Fprintf(&sb, "AI Bias:         %s\n", ai.DirectionalBias)
	fmt.Fprintf(&sb, "AI Confidence:   %d/100\n\n", ai.Confidence)
	fmt.Fprintf(&sb, "Key Drivers:\n%s\n\n", bulletList(ai.KeyDrivers))
	fmt.Fprintf(&sb, "Risk Factors:\n%s\n\n", bulletList(ai.RiskFactors))
	fmt.Fprintf(&sb, "Rationale:\n  %s\n\n", ai.Rationale)

	fmt.Fprintf(&sb, "--- PAST PREDICTIONS (%s) ---\n", p.Ticker)
	sb.WriteString(history.FormatHistoryTable(p.Past) + "\n\n")

	sb.WriteString("--- FINAL SIGNAL ---\n")
	fmt.Fprintf(&sb, ">>> %s <<<\n\n", p.Signal.Label())

	sb.WriteString(rule + "\n")
	sb.WriteString(Disclaimer + "\n")
	sb.WriteString(rule)
	return sb.String()
}

func rsiNote(rsi float64) string {
	switch {
	case rsi > 70:
		return "  ← overbought"
	case rsi < 30:
		return "  ← oversold"
	default:
		return ""
	}
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "  (none)"
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "  - " + item
	}
	return strings.Join(lines, "\n")
}

// groupThousands formats n with comma separators.
func groupThousands(n int64) string {
	s := fmt.Sprint(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
