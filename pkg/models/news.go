package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Article is a single news headline as returned by a news source.
// Published is an ISO-8601 timestamp string, or empty when the source did
// not provide one.
type Article struct {
	Title     string `json:"title"`
	Source    string `json:"source"`
	Published string `json:"published"`
	Summary   string `json:"summary"`
	URL       string `json:"url"`
}

// DedupKey returns a deterministic identity for deduplication: the SHA-256
// of the lower-cased, trimmed (url, title) pair. Two articles with the same
// key are duplicates regardless of their other fields.
func (a Article) DedupKey() string {
	raw := strings.ToLower(strings.TrimSpace(a.URL)) + "|" + strings.ToLower(strings.TrimSpace(a.Title))
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
