package technical

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/seenimoa/daysignal/pkg/models"
)

// makeSeries generates a synthetic daily series from the given closes,
// one trading day apart, with a constant volume.
func makeSeries(ticker string, closes []float64, volumes []int64) models.PriceSeries {
	points := make([]models.PricePoint, len(closes))
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		vol := int64(1_000_000)
		if volumes != nil {
			vol = volumes[i]
		}
		points[i] = models.PricePoint{
			Date:   start.Add(time.Duration(i) * 24 * time.Hour),
			Close:  c,
			Volume: vol,
		}
	}
	return models.PriceSeries{Ticker: ticker, Points: points}
}

func ramp(n int, base, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = base + float64(i)*step
	}
	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestRSIPureUptrend(t *testing.T) {
	if got := RSI(ramp(15, 100, 1), 14); got != 100.0 {
		t.Errorf("strictly increasing 15-point series: RSI = %.2f, want 100.0", got)
	}
}

func TestRSIPureDowntrend(t *testing.T) {
	if got := RSI(ramp(15, 100, -1), 14); got != 0.0 {
		t.Errorf("strictly decreasing 15-point series: RSI = %.2f, want 0.0", got)
	}
}

func TestRSIInsufficientData(t *testing.T) {
	for _, n := range []int{1, 7, 14} {
		if got := RSI(ramp(n, 100, 1), 14); got != 50.0 {
			t.Errorf("RSI with %d points = %.2f, want neutral 50.0", n, got)
		}
	}
}

func TestRSIBounded(t *testing.T) {
	// Mixed series with alternating moves.
	closes := make([]float64, 40)
	price := 100.0
	for i := range closes {
		if i%3 == 0 {
			price -= 2.5
		} else {
			price += 1.7
		}
		closes[i] = price
	}
	got := RSI(closes, 14)
	if got < 0 || got > 100 {
		t.Errorf("RSI = %.2f, want within [0,100]", got)
	}
}

func TestBollingerOrdering(t *testing.T) {
	cases := [][]float64{
		ramp(30, 100, 0.5),
		ramp(30, 200, -1.2),
		constant(25, 42),
		{10, 12, 11, 15, 9, 14, 13},
	}
	for _, closes := range cases {
		upper, middle, lower, _ := BollingerBands(closes, 20, 2)
		if lower > middle || middle > upper {
			t.Errorf("band ordering violated: lower=%.2f middle=%.2f upper=%.2f", lower, middle, upper)
		}
	}
}

func TestBollingerConstantSeries(t *testing.T) {
	upper, middle, lower, position := BollingerBands(constant(20, 50), 20, 2)
	if upper != 50 || middle != 50 || lower != 50 {
		t.Errorf("constant series: bands = (%.2f, %.2f, %.2f), want all 50", upper, middle, lower)
	}
	if position != models.BBInside {
		t.Errorf("constant series: position = %q, want %q", position, models.BBInside)
	}
}

func TestBollingerBreakout(t *testing.T) {
	closes := append(constant(20, 100), 200) // final spike far above the window
	_, _, _, position := BollingerBands(closes, 20, 2)
	if position != models.BBAboveUpper {
		t.Errorf("breakout position = %q, want %q", position, models.BBAboveUpper)
	}

	closes = append(constant(20, 100), 20)
	_, _, _, position = BollingerBands(closes, 20, 2)
	if position != models.BBBelowLower {
		t.Errorf("breakdown position = %q, want %q", position, models.BBBelowLower)
	}
}

func TestClassifyVolume(t *testing.T) {
	tests := []struct {
		name    string
		volumes []int64
		want    string
	}{
		{"spike", []int64{100, 100, 100, 100, 100, 100, 100, 100, 100, 400}, models.VolumeHigh},
		{"drought", []int64{100, 100, 100, 100, 100, 100, 100, 100, 100, 10}, models.VolumeLow},
		{"steady", []int64{100, 100, 100, 100, 100, 100, 100, 100, 100, 110}, models.VolumeNormal},
		{"all zero", []int64{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, models.VolumeNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avg, label := ClassifyVolume(tt.volumes, 10)
			if label != tt.want {
				t.Errorf("label = %q, want %q (avg %.1f)", label, tt.want, avg)
			}
		})
	}
}

func TestClassifyVolumeZeroAverage(t *testing.T) {
	avg, label := ClassifyVolume([]int64{0, 0, 0}, 10)
	if avg != 0 {
		t.Errorf("avg = %.1f, want 0", avg)
	}
	if label != models.VolumeNormal {
		t.Errorf("label = %q, want %q", label, models.VolumeNormal)
	}
}

func TestReturn7D(t *testing.T) {
	// 9 closes: baseline is closes[1] (7 trading days before the last).
	closes := []float64{90, 100, 101, 102, 103, 104, 105, 106, 110}
	if got := Return7D(closes); got != 10.0 {
		t.Errorf("Return7D = %.2f, want 10.00", got)
	}
}

func TestReturn7DShortSeries(t *testing.T) {
	// Fewer than 8 closes: oldest close is the baseline.
	closes := []float64{100, 101, 102, 103, 104, 105, 110}
	if got := Return7D(closes); got != 10.0 {
		t.Errorf("Return7D = %.2f, want 10.00", got)
	}
}

func TestComputeInsufficientData(t *testing.T) {
	series := makeSeries("MSFT", ramp(6, 100, 1), nil)
	_, err := Compute(series)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("Compute with 6 points: err = %v, want ErrInsufficientData", err)
	}
}

func TestComputeFullSeries(t *testing.T) {
	series := makeSeries("MSFT", ramp(30, 100, 1), nil)
	md, err := Compute(series)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if md.Ticker != "MSFT" {
		t.Errorf("ticker = %q", md.Ticker)
	}
	if md.PricesAvailable != 30 {
		t.Errorf("prices_available = %d, want 30", md.PricesAvailable)
	}
	if md.CloseVsSMA7 != models.CloseAbove {
		t.Errorf("rising series: close_vs_sma7 = %q, want %q", md.CloseVsSMA7, models.CloseAbove)
	}
	if md.RSI14 != 100.0 {
		t.Errorf("monotone rising series: rsi_14 = %.2f, want 100.0", md.RSI14)
	}
	if md.Return7DPct <= 0 {
		t.Errorf("rising series: return_7d_pct = %.2f, want > 0", md.Return7DPct)
	}
	if md.BBLower > md.BBMiddle || md.BBMiddle > md.BBUpper {
		t.Errorf("band ordering violated: %v ≤ %v ≤ %v", md.BBLower, md.BBMiddle, md.BBUpper)
	}
	if md.LastCloseDate == "" {
		t.Error("last_close_date is empty")
	}
}

func TestComputeSMATieBreak(t *testing.T) {
	// All closes equal: last close == sma_7 exactly, which classifies as "below".
	series := makeSeries("FLAT", constant(21, 100), nil)
	md, err := Compute(series)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if md.CloseVsSMA7 != models.CloseBelow {
		t.Errorf("equal close and SMA: close_vs_sma7 = %q, want %q", md.CloseVsSMA7, models.CloseBelow)
	}
}

func TestRSIRounding(t *testing.T) {
	closes := []float64{100, 102, 101, 104, 103, 107, 105, 109, 108, 112, 110, 114, 113, 117, 115, 119}
	got := RSI(closes, 14)
	if got != math.Round(got*100)/100 {
		t.Errorf("RSI %.6f not rounded to 2 decimals", got)
	}
}
