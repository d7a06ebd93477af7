package models

import "time"

// HistoryRecord is one completed pipeline run as persisted to the
// append-only history log. Field names are the JSONL wire format; records
// are never mutated or deleted once written.
type HistoryRecord struct {
	RunAt           time.Time   `json:"run_at"`
	Ticker          string      `json:"ticker"`
	Topic           string      `json:"topic"`
	FinalSignal     FinalSignal `json:"final_signal"`
	Confidence      int         `json:"confidence_0_100"`
	NewsSentiment   string      `json:"news_sentiment"`
	DirectionalBias string      `json:"directional_bias"`
	LastClose       float64     `json:"last_close"`
	LastCloseDate   string      `json:"last_close_date"`
	Return7DPct     float64     `json:"return_7d_pct"`
	CloseVsSMA7     string      `json:"close_vs_sma7"`
	RSI14           float64     `json:"rsi_14"`
}

// NewHistoryRecord assembles a record from one run's outputs.
func NewHistoryRecord(topic string, market MarketData, ai AnalysisResult, signal FinalSignal) HistoryRecord {
	return HistoryRecord{
		RunAt:           time.Now().UTC(),
		Ticker:          market.Ticker,
		Topic:           topic,
		FinalSignal:     signal,
		Confidence:      ai.Confidence,
		NewsSentiment:   ai.NewsSentiment,
		DirectionalBias: ai.DirectionalBias,
		LastClose:       market.LastClose,
		LastCloseDate:   market.LastCloseDate,
		Return7DPct:     market.Return7DPct,
		CloseVsSMA7:     market.CloseVsSMA7,
		RSI14:           market.RSI14,
	}
}
