// Package history persists one record per pipeline run to an append-only
// JSONL log and grades past signals against realized next-day price moves.
package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/phuslu/log"

	"github.com/seenimoa/daysignal/pkg/models"
)

// FileName is the history log inside the data directory.
const FileName = "signal_history.jsonl"

// Store owns the history log. Appends are best-effort: a write failure is
// logged, never surfaced, so a full disk cannot abort a pipeline run.
type Store struct {
	path string
	log  log.Logger
}

// NewStore creates a Store rooted at dataDir. The file is created on first
// append.
func NewStore(dataDir string, logger log.Logger) *Store {
	return &Store{path: filepath.Join(dataDir, FileName), log: logger}
}

// Path returns the location of the history log.
func (s *Store) Path() string { return s.path }

// Append writes one record as a single JSON line.
func (s *Store) Append(rec models.HistoryRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not encode signal history record")
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.log.Warn().Err(err).Msg("could not create history directory")
		return
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not open signal history")
		return
	}
	defer f.Close()

	// One Write call per record keeps the line atomic for readers.
	if _, err := f.Write(append(data, '\n')); err != nil {
		s.log.Warn().Err(err).Msg("could not write signal history")
		return
	}
	s.log.Info().Str("path", s.path).Msg("signal record appended")
}

// Load reads every record from the log in append order. A missing file is an
// empty history; a malformed line is skipped with a warning.
func (s *Store) Load() []models.HistoryRecord {
	f, err := os.Open(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn().Err(err).Msg("could not read signal history")
		}
		return nil
	}
	defer f.Close()

	var records []models.HistoryRecord
	sc := bufio.NewScanner(f)
	for lineno := 1; sc.Scan(); lineno++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var rec models.HistoryRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			s.log.Warn().Int("line", lineno).Err(err).Msg("skipping malformed history line")
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		s.log.Warn().Err(err).Msg("error scanning signal history")
	}
	return records
}

// ByTicker returns the stored records for one ticker, in append order.
func (s *Store) ByTicker(ticker string) []models.HistoryRecord {
	var out []models.HistoryRecord
	for _, rec := range s.Load() {
		if rec.Ticker == ticker {
			out = append(out, rec)
		}
	}
	return out
}
