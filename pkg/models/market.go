// Package models defines the shared value types that flow through the
// signal pipeline: price series, computed market indicators, news articles,
// AI analysis results, and persisted history records.
package models

import "time"

// PricePoint is a single daily bar reduced to what the pipeline needs.
type PricePoint struct {
	Date   time.Time
	Close  float64
	Volume int64
}

// PriceSeries holds an ordered (ascending by date) daily close/volume series
// for one ticker, as supplied by a market data source.
type PriceSeries struct {
	Ticker string
	Points []PricePoint
}

// Len returns the number of trading days in the series.
func (s PriceSeries) Len() int { return len(s.Points) }

// Closes returns the close prices in date order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Volumes returns the daily volumes in date order.
func (s PriceSeries) Volumes() []int64 {
	vols := make([]int64, len(s.Points))
	for i, p := range s.Points {
		vols[i] = p.Volume
	}
	return vols
}

// Last returns the most recent point. Callers must check Len first.
func (s PriceSeries) Last() PricePoint { return s.Points[len(s.Points)-1] }

// Close-vs-SMA classifications.
const (
	CloseAbove = "above"
	CloseBelow = "below"
)

// Bollinger Band position classifications.
const (
	BBAboveUpper = "above_upper"
	BBInside     = "inside"
	BBBelowLower = "below_lower"
)

// Volume-vs-average classifications.
const (
	VolumeHigh   = "high"
	VolumeNormal = "normal"
	VolumeLow    = "low"
)

// MarketData holds the computed technical indicators for one ticker.
// It is built once per pipeline run from a PriceSeries and never mutated.
// The JSON field names are part of the prompt contract with the AI adapter.
type MarketData struct {
	Ticker          string  `json:"ticker"`
	LastClose       float64 `json:"last_close"`
	LastCloseDate   string  `json:"last_close_date"` // YYYY-MM-DD
	SMA7            float64 `json:"sma_7"`
	SMA21           float64 `json:"sma_21"`
	CloseVsSMA7     string  `json:"close_vs_sma7"` // "above" | "below"
	Return7DPct     float64 `json:"return_7d_pct"`
	RSI14           float64 `json:"rsi_14"` // 0-100; >70 overbought, <30 oversold
	BBUpper         float64 `json:"bb_upper"`
	BBMiddle        float64 `json:"bb_middle"`
	BBLower         float64 `json:"bb_lower"`
	BBPosition      string  `json:"bb_position"` // "above_upper" | "inside" | "below_lower"
	Vol10DAvg       float64 `json:"vol_10d_avg"`
	VolVsAvg        string  `json:"vol_vs_avg"` // "high" | "normal" | "low"
	PricesAvailable int     `json:"prices_available"`
}
