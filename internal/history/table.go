package history

import (
	"fmt"
	"strings"

	"github.com/seenimoa/daysignal/pkg/models"
)

// maxTableRows caps the past-predictions table at the most recent runs.
const maxTableRows = 10

// FormatHistoryTable renders past predictions as a fixed-width table for the
// report. Records are expected in append (oldest-first) order.
func FormatHistoryTable(records []models.HistoryRecord) string {
	if len(records) == 0 {
		return "  (no past predictions)"
	}
	if len(records) > maxTableRows {
		records = records[len(records)-maxTableRows:]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-17s %-22s %4s %9s %6s\n", "Run At", "Signal", "Conf", "Close", "RSI")
	sb.WriteString(strings.Repeat("-", 62) + "\n")
	for _, rec := range records {
		fmt.Fprintf(&sb, "%-17s %-22s %4d %9.2f %6.1f\n",
			rec.RunAt.Format("2006-01-02 15:04"),
			rec.FinalSignal,
			rec.Confidence,
			rec.LastClose,
			rec.RSI14)
	}
	return strings.TrimRight(sb.String(), "\n")
}
