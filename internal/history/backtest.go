package history

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/phuslu/log"

	"github.com/seenimoa/daysignal/pkg/models"
)

// backtestWindowDays bounds the price fetch after a signal date; two trading
// days always fit inside it.
const backtestWindowDays = 10

// PriceFetcher supplies realized daily closes for grading past signals.
// Dates are YYYY-MM-DD; the returned series is ordered oldest first.
type PriceFetcher interface {
	DailyCloses(ctx context.Context, ticker, startDate, endDate string) ([]models.PricePoint, error)
}

// Evaluation is one graded history record. Correct is nil when the signal
// was "uncertain": such records are shown but excluded from accuracy.
type Evaluation struct {
	models.HistoryRecord
	SignalClose      float64
	NextClose        float64
	ActualNextDayPct float64
	Correct          *bool
}

// Summary aggregates a backtest run.
type Summary struct {
	Evaluated   int
	Directional int
	Correct     int
}

// Accuracy returns the percentage of directional signals graded correct.
func (s Summary) Accuracy() float64 {
	if s.Directional == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Directional) * 100
}

// Backtester grades stored signals against the next trading day's close.
// It only reads the history log; stored records are never modified.
type Backtester struct {
	store  *Store
	prices PriceFetcher
	log    log.Logger
}

// NewBacktester creates a Backtester over the given store and price source.
func NewBacktester(store *Store, prices PriceFetcher, logger log.Logger) *Backtester {
	return &Backtester{store: store, prices: prices, log: logger}
}

// Run evaluates every stored record. A record is skipped (not failed) when
// it is incomplete, when its price data cannot be fetched, or when the next
// trading day has not happened yet.
func (b *Backtester) Run(ctx context.Context) []Evaluation {
	var evaluated []Evaluation
	for _, rec := range b.store.Load() {
		if rec.Ticker == "" || rec.LastCloseDate == "" || rec.FinalSignal == "" {
			b.log.Warn().Str("ticker", rec.Ticker).Msg("skipping incomplete history record")
			continue
		}
		start, err := time.Parse("2006-01-02", rec.LastCloseDate)
		if err != nil {
			b.log.Warn().Str("date", rec.LastCloseDate).Err(err).Msg("skipping record with bad date")
			continue
		}
		end := start.AddDate(0, 0, backtestWindowDays).Format("2006-01-02")

		points, err := b.prices.DailyCloses(ctx, rec.Ticker, rec.LastCloseDate, end)
		if err != nil {
			b.log.Warn().
				Str("ticker", rec.Ticker).
				Str("date", rec.LastCloseDate).
				Err(err).
				Msg("could not evaluate record")
			continue
		}
		if len(points) < 2 {
			b.log.Info().
				Str("ticker", rec.Ticker).
				Str("date", rec.LastCloseDate).
				Msg("next-day data not yet available, skipping")
			continue
		}

		signalClose := points[0].Close
		nextClose := points[1].Close
		actualPct := (nextClose - signalClose) / signalClose * 100

		ev := Evaluation{
			HistoryRecord:    rec,
			SignalClose:      round2(signalClose),
			NextClose:        round2(nextClose),
			ActualNextDayPct: round2(actualPct),
		}
		switch {
		case rec.FinalSignal.Bullish():
			correct := actualPct > 0
			ev.Correct = &correct
		case rec.FinalSignal.Bearish():
			correct := actualPct < 0
			ev.Correct = &correct
		}
		evaluated = append(evaluated, ev)
	}
	return evaluated
}

// Summarize tallies a set of evaluations.
func Summarize(evaluated []Evaluation) Summary {
	s := Summary{Evaluated: len(evaluated)}
	for _, ev := range evaluated {
		if ev.Correct == nil {
			continue
		}
		s.Directional++
		if *ev.Correct {
			s.Correct++
		}
	}
	return s
}

// FormatResults renders the backtest accuracy table.
func FormatResults(evaluated []Evaluation) string {
	if len(evaluated) == 0 {
		return "No records could be evaluated (data may be too recent or history empty).\n"
	}
	s := Summarize(evaluated)
	rule := strings.Repeat("=", 68)

	var sb strings.Builder
	sb.WriteString("\n" + rule + "\n")
	sb.WriteString("  SIGNAL HISTORY BACKTEST\n")
	sb.WriteString(rule + "\n")
	fmt.Fprintf(&sb, "Total evaluated records:  %d\n", s.Evaluated)
	fmt.Fprintf(&sb, "Directional signals:      %d  (uncertain excluded)\n", s.Directional)
	if s.Directional > 0 {
		fmt.Fprintf(&sb, "Correct predictions:      %d\n", s.Correct)
		fmt.Fprintf(&sb, "Accuracy:                 %.1f%%\n", s.Accuracy())
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%-12s %-7s %-22s %4s %8s  %s\n", "Date", "Ticker", "Signal", "Conf", "Actual", "OK?")
	sb.WriteString(strings.Repeat("-", 68) + "\n")
	for _, ev := range evaluated {
		ok := "—"
		if ev.Correct != nil {
			if *ev.Correct {
				ok = "✓"
			} else {
				ok = "✗"
			}
		}
		fmt.Fprintf(&sb, "%-12s %-7s %-22s %4d %+7.2f%%  %s\n",
			ev.LastCloseDate, ev.Ticker, ev.FinalSignal, ev.Confidence, ev.ActualNextDayPct, ok)
	}
	sb.WriteString(rule + "\n\n")
	sb.WriteString("NOTE: Next-day accuracy is a noisy metric. Use for trend observation only, not as performance guarantee.\n")
	return sb.String()
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
