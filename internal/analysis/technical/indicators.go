// Package technical implements the indicator engine: RSI, Bollinger Bands,
// simple moving averages, and volume classification over a daily price
// series. All functions are pure; the only failure mode is a series with
// fewer than MinPoints trading days.
package technical

import (
	"errors"
	"fmt"
	"math"

	"github.com/seenimoa/daysignal/pkg/models"
)

// Indicator parameters. These mirror the values baked into the prompt
// contract (rsi_14, bb 20/2σ, vol_10d_avg) and are not configurable.
const (
	MinPoints    = 7
	RSIPeriod    = 14
	BBPeriod     = 20
	BBMultiplier = 2.0
	VolumePeriod = 10
)

// Volume ratio cutoffs: most recent day's volume relative to the 10-day mean.
const (
	volumeHighRatio = 1.5
	volumeLowRatio  = 0.75
)

// ErrInsufficientData is returned when a price series has fewer than
// MinPoints trading days. Thin-data conditions above that floor degrade
// gracefully (neutral RSI, shrunken windows) instead of failing.
var ErrInsufficientData = errors.New("technical: insufficient price data")

// RSI calculates the latest Relative Strength Index using Wilder's smoothed
// averages. Returns 50.0 when fewer than period+1 closes are available
// (neutral degraded mode, not an error), 100.0 when the window holds no
// losses, and 0.0 when it holds no gains. Result is rounded to 2 decimals.
func RSI(closes []float64, period int) float64 {
	if period <= 0 {
		period = RSIPeriod
	}
	if len(closes) < period+1 {
		return 50.0
	}

	deltas := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		deltas[i-1] = closes[i] - closes[i-1]
	}

	// Seed: simple mean of the first `period` gains and losses.
	var avgGain, avgLoss float64
	for _, d := range deltas[:period] {
		if d > 0 {
			avgGain += d
		} else {
			avgLoss += -d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder's smoothing for everything beyond the seed window.
	for _, d := range deltas[period:] {
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return round2(100 - 100/(1+rs))
}

// BollingerBands calculates the 20-day bands over the tail of the series,
// shrinking the window when fewer than period closes exist. The standard
// deviation uses the sample (n-1) denominator and is 0 for a single-point
// window. Position compares the latest close against [lower, upper] with
// strict inequalities: a close exactly on a band is "inside".
func BollingerBands(closes []float64, period int, mult float64) (upper, middle, lower float64, position string) {
	if period <= 0 {
		period = BBPeriod
	}
	if mult <= 0 {
		mult = BBMultiplier
	}

	window := closes
	if len(closes) > period {
		window = closes[len(closes)-period:]
	}

	middle = mean(window)
	sd := 0.0
	if len(window) > 1 {
		sd = sampleStddev(window, middle)
	}
	upper = middle + mult*sd
	lower = middle - mult*sd

	last := closes[len(closes)-1]
	switch {
	case last > upper:
		position = models.BBAboveUpper
	case last < lower:
		position = models.BBBelowLower
	default:
		position = models.BBInside
	}
	return round2(upper), round2(middle), round2(lower), position
}

// ClassifyVolume labels the most recent day's volume against the mean of the
// last min(period, available) days: "high" above 1.5x, "low" below 0.75x,
// "normal" otherwise. A zero average (including an all-zero window) is
// "normal" rather than a division by zero.
func ClassifyVolume(volumes []int64, period int) (avg float64, label string) {
	if period <= 0 {
		period = VolumePeriod
	}
	if len(volumes) == 0 {
		return 0, models.VolumeNormal
	}

	window := volumes
	if len(volumes) > period {
		window = volumes[len(volumes)-period:]
	}
	var sum float64
	for _, v := range window {
		sum += float64(v)
	}
	avg = sum / float64(len(window))
	if avg == 0 {
		return 0, models.VolumeNormal
	}

	ratio := float64(volumes[len(volumes)-1]) / avg
	switch {
	case ratio > volumeHighRatio:
		label = models.VolumeHigh
	case ratio < volumeLowRatio:
		label = models.VolumeLow
	default:
		label = models.VolumeNormal
	}
	return avg, label
}

// SMA returns the mean of the last min(period, available) closes.
func SMA(closes []float64, period int) float64 {
	window := closes
	if len(closes) > period {
		window = closes[len(closes)-period:]
	}
	return mean(window)
}

// Return7D computes the 7-trading-day percentage return, rounded to 2
// decimals. With fewer than 8 closes the oldest available close is the
// baseline instead of indexing out of range.
func Return7D(closes []float64) float64 {
	last := closes[len(closes)-1]
	baseline := closes[0]
	if len(closes) >= 8 {
		baseline = closes[len(closes)-8]
	}
	return round2((last - baseline) / baseline * 100)
}

// Compute derives the full MarketData indicator set from a price series.
// It is the single constructor for MarketData: the result is built once and
// never mutated. Returns ErrInsufficientData when the series has fewer than
// MinPoints trading days — the hard precondition for every computation.
func Compute(series models.PriceSeries) (models.MarketData, error) {
	n := series.Len()
	if n < MinPoints {
		return models.MarketData{}, fmt.Errorf("%w: %d trading days for %q, need at least %d",
			ErrInsufficientData, n, series.Ticker, MinPoints)
	}

	closes := series.Closes()
	last := series.Last()

	sma7 := SMA(closes, 7)
	sma21 := SMA(closes, 21)

	// Tie-break: a close exactly equal to its SMA counts as "below".
	closeVsSMA7 := models.CloseBelow
	if last.Close > sma7 {
		closeVsSMA7 = models.CloseAbove
	}

	rsi := RSI(closes, RSIPeriod)
	bbUpper, bbMiddle, bbLower, bbPosition := BollingerBands(closes, BBPeriod, BBMultiplier)
	volAvg, volLabel := ClassifyVolume(series.Volumes(), VolumePeriod)

	return models.MarketData{
		Ticker:          series.Ticker,
		LastClose:       round2(last.Close),
		LastCloseDate:   last.Date.Format("2006-01-02"),
		SMA7:            round2(sma7),
		SMA21:           round2(sma21),
		CloseVsSMA7:     closeVsSMA7,
		Return7DPct:     Return7D(closes),
		RSI14:           rsi,
		BBUpper:         bbUpper,
		BBMiddle:        bbMiddle,
		BBLower:         bbLower,
		BBPosition:      bbPosition,
		Vol10DAvg:       volAvg,
		VolVsAvg:        volLabel,
		PricesAvailable: n,
	}, nil
}

// --- helper functions ---

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func sampleStddev(data []float64, mean float64) float64 {
	if len(data) < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range data {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(data)-1))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
