package report

import (
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/daysignal/pkg/models"
)

func buildParams() Params {
	return Params{
		Topic:  "Microsoft",
		Ticker: "MSFT",
		Articles: []models.Article{
			{Title: "a"}, {Title: "b"}, {Title: "c"},
		},
		Market: models.MarketData{
			Ticker:        "MSFT",
			LastClose:     430.5,
			LastCloseDate: "2025-06-02",
			SMA7:          425.1,
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
		},
		AI: models.AnalysisResult{
			NewsSentiment:   models.SentimentPositive,
			KeyDrivers:      []string{"cloud growth"},
			RiskFactors:     []string{"valuation"},
			DirectionalBias: models.BiasLikelyUp,
			Confidence:      80,
			Rationale:       "Momentum is positive.",
		},
		Signal: models.SignalHighConvictionUp,
		Now:    time.Date(2025, 6, 2, 21, 30, 0, 0, time.UTC),
	}
}

func TestBuild(t *testing.T) {
	out := Build(buildParams())

	for _, want := range []string{
		"NEWS + MARKET DAILY SIGNAL",
		"Timestamp:     2025-06-02 21:30:00 UTC",
		"Topic:         Microsoft",
		"Articles used: 3",
		"Last Close:      $430.5 (2025-06-02)",
		"Close vs 7d SMA: ABOVE",
		"7-Day Return:    2.15%",
		"BB Position:     INSIDE",
		"10-Day Avg Vol:  21,000,000",
		"News Sentiment:  POSITIVE",
		"AI Confidence:   80/100",
		"  - cloud growth",
		"  - valuation",
		"(no past predictions)",
		">>> HIGH CONVICTION UP <<<",
		"DISCLAIMER:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestBuildRSINotes(t *testing.T) {
	p := buildParams()
	p.Market.RSI14 = 75.5
	if out := Build(p); !strings.Contains(out, "75.5  ← overbought") {
		t.Error("overbought note missing")
	}

	p.Market.RSI14 = 22.1
	if out := Build(p); !strings.Contains(out, "22.1  ← oversold") {
		t.Error("oversold note missing")
	}
}

func TestBuildEmptyDriversAndHistory(t *testing.T) {
	p := buildParams()
	p.AI.KeyDrivers = nil
	p.AI.RiskFactors = nil
	p.Past = []models.HistoryRecord{{
		RunAt:       time.Date(2025, 6, 1, 21, 0, 0, 0, time.UTC),
		Ticker:      "MSFT",
		FinalSignal: models.SignalLikelyUp,
		Confidence:  55,
		LastClose:   428.00,
		RSI14:       58.2,
	}}

	out := Build(p)
	if !strings.Contains(out, "(none)") {
		t.Error("empty driver list not rendered as (none)")
	}
	if !strings.Contains(out, "likely_up") || !strings.Contains(out, "428.00") {
		t.Error("past prediction row missing")
	}
	if strings.Contains(out, "(no past predictions)") {
		t.Error("placeholder shown despite history rows")
	}
}

func TestGroupThousands(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{21000000, "21,000,000"},
		{-1234567, "-1,234,567"},
	}
	for _, tt := range tests {
		if got := groupThousands(tt.in); got != tt.want {
			t.Errorf("groupThousands(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
