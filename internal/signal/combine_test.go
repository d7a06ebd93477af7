package signal

import (
	"testing"

	"github.com/seenimoa/daysignal/pkg/models"
)

func market(closeVsSMA7 string, return7d float64) models.MarketData {
	return models.MarketData{
		Ticker:      "MSFT",
		CloseVsSMA7: closeVsSMA7,
		Return7DPct: return7d,
	}
}

func analysis(bias string, confidence int) models.AnalysisResult {
	return models.AnalysisResult{DirectionalBias: bias, Confidence: confidence}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name   string
		ai     models.AnalysisResult
		market models.MarketData
		want   models.FinalSignal
	}{
		{
			name:   "confirmed bullish at conviction cutoff",
			ai:     analysis(models.BiasLikelyUp, 70),
			market: market(models.CloseAbove, 1.0),
			want:   models.SignalHighConvictionUp,
		},
		{
			name:   "confirmed bullish below cutoff",
			ai:     analysis(models.BiasLikelyUp, 50),
			market: market(models.CloseAbove, 1.0),
			want:   models.SignalLikelyUp,
		},
		{
			name:   "bullish bias against the trend is uncertain despite confidence",
			ai:     analysis(models.BiasLikelyUp, 90),
			market: market(models.CloseBelow, -1.0),
			want:   models.SignalUncertain,
		},
		{
			name:   "uncertain bias is always uncertain",
			ai:     analysis(models.BiasUncertain, 95),
			market: market(models.CloseAbove, 3.0),
			want:   models.SignalUncertain,
		},
		{
			name:   "confirmed bearish high conviction",
			ai:     analysis(models.BiasLikelyDown, 85),
			market: market(models.CloseBelow, -2.5),
			want:   models.SignalHighConvictionDown,
		},
		{
			name:   "confirmed bearish low conviction",
			ai:     analysis(models.BiasLikelyDown, 45),
			market: market(models.CloseBelow, -0.1),
			want:   models.SignalLikelyDown,
		},
		{
			name:   "bullish bias with flat return lacks confirmation",
			ai:     analysis(models.BiasLikelyUp, 80),
			market: market(models.CloseAbove, 0),
			want:   models.SignalUncertain,
		},
		{
			name:   "bearish bias above the SMA lacks confirmation",
			ai:     analysis(models.BiasLikelyDown, 80),
			market: market(models.CloseAbove, -1.0),
			want:   models.SignalUncertain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Combine(tt.ai, tt.market); got != tt.want {
				t.Errorf("Combine() = %q, want %q", got, tt.want)
			}
		})
	}
}
