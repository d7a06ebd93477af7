package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/phuslu/log"

	"github.com/seenimoa/daysignal/pkg/models"
)

// seriesRange is how much daily history is pulled for indicator computation;
// three months comfortably covers the longest lookback (21-day SMA + RSI seed).
const seriesRange = "3mo"

// Yahoo fetches daily price series from the Yahoo Finance v8 chart API.
type Yahoo struct {
	baseURL string
	cache   *Cache
	limiter *RateLimiter
	log     log.Logger
}

// NewYahoo creates a Yahoo Finance data source.
func NewYahoo(logger log.Logger) *Yahoo {
	return &Yahoo{
		baseURL: "https://query1.finance.yahoo.com",
		cache:   NewCache(5 * time.Minute),
		limiter: NewRateLimiter(5, time.Second), // 5 req/s
		log:     logger,
	}
}

// DailySeries returns the recent daily close/volume series for a ticker,
// oldest first. Returns ErrNoData when the ticker resolves but has no bars.
func (y *Yahoo) DailySeries(ctx context.Context, ticker string) (models.PriceSeries, error) {
	chartURL := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d",
		y.baseURL, url.PathEscape(ticker), seriesRange)

	result, err := y.fetchChart(ctx, ticker, chartURL)
	if err != nil {
		return models.PriceSeries{}, err
	}

	points := chartPoints(result)
	if len(points) == 0 {
		return models.PriceSeries{}, fmt.Errorf("%w: no daily bars for %s", ErrNoData, ticker)
	}
	y.log.Info().Str("ticker", ticker).Int("days", len(points)).Msg("fetched daily series")
	return models.PriceSeries{Ticker: ticker, Points: points}, nil
}

// DailyCloses returns the daily bars in [startDate, endDate), oldest first.
// Dates are YYYY-MM-DD. This is the price source the backtester grades
// against.
func (y *Yahoo) DailyCloses(ctx context.Context, ticker, startDate, endDate string) ([]models.PricePoint, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("bad start date %q: %w", startDate, err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("bad end date %q: %w", endDate, err)
	}

	chartURL := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		y.baseURL, url.PathEscape(ticker), start.Unix(), end.Unix())

	result, err := y.fetchChart(ctx, ticker, chartURL)
	if err != nil {
		return nil, err
	}
	return chartPoints(result), nil
}

// --- Internal helpers ---

func (y *Yahoo) fetchChart(ctx context.Context, ticker, chartURL string) (yfChartResult, error) {
	if cached, ok := y.cache.Get(chartURL); ok {
		return cached.(yfChartResult), nil
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return yfChartResult{}, err
	}

	body, _, err := doGet(ctx, chartURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		return yfChartResult{}, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return yfChartResult{}, fmt.Errorf("read response: %w", err)
	}

	var resp yfChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return yfChartResult{}, fmt.Errorf("parse yahoo chart: %w", err)
	}
	if resp.Chart.Error != nil {
		return yfChartResult{}, fmt.Errorf("yahoo chart error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return yfChartResult{}, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	result := resp.Chart.Result[0]
	y.cache.Set(chartURL, result)
	return result, nil
}

// chartPoints flattens a chart result into price points, skipping bars with a
// missing close (Yahoo nulls out halted or partial days).
func chartPoints(result yfChartResult) []models.PricePoint {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	q := result.Indicators.Quote[0]

	points := make([]models.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		p := models.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *q.Close[i],
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			p.Volume = *q.Volume[i]
		}
		points = append(points, p)
	}
	return points
}

// --- Internal Types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
