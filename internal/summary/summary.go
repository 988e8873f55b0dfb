// Package summary implements spec.md §4.6's SummaryStore: per-file
// extractive summaries (first N whitespace-separated tokens), persisted as
// a JSON map keyed by file name and invalidated per-file on content hash
// change. Grounded on the teacher's internal/embed/cached.go content-hash
// keying pattern and internal/index's JSON-envelope persistence shape.
package summary

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/google/renameio"

	"github.com/phazer-schmid/phasergun/internal/perrors"
)

// Document is the minimal input Summarize needs, decoupled from
// internal/docparse.ParsedDocument to avoid an upward package dependency.
type Document struct {
	FileName string
	Text     string
}

// Summary is the extractive summary spec.md §3 names.
type Summary struct {
	Text        string `json:"text"`
	ContentHash string `json:"content_hash"`
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Summarize takes the first wordLimit whitespace-separated tokens of
// doc.Text, normalizes internal whitespace to single spaces, and records
// the full document's content hash (spec.md §4.6).
func Summarize(doc Document, wordLimit int) Summary {
	fields := strings.Fields(doc.Text)
	if len(fields) > wordLimit {
		fields = fields[:wordLimit]
	}
	return Summary{
		Text:        strings.Join(fields, " "),
		ContentHash: contentHash(doc.Text),
	}
}

// Store is an in-memory, file-name-keyed collection of summaries.
type Store struct {
	mu        sync.RWMutex
	summaries map[string]Summary
}

// New returns an empty Store.
func New() *Store {
	return &Store{summaries: make(map[string]Summary)}
}

// Put records or replaces the summary for fileName.
func (s *Store) Put(fileName string, sum Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[fileName] = sum
}

// Get returns the summary for fileName, if present.
func (s *Store) Get(fileName string) (Summary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum, ok := s.summaries[fileName]
	return sum, ok
}

// UpsertIfChanged summarizes doc and stores it only when no prior summary
// exists for doc.FileName or the prior one's ContentHash differs,
// preserving unchanged summaries across rebuilds (spec.md §4.6's
// belt-and-braces per-file guard).
func (s *Store) UpsertIfChanged(doc Document, wordLimit int) Summary {
	hash := contentHash(doc.Text)
	if existing, ok := s.Get(doc.FileName); ok && existing.ContentHash == hash {
		return existing
	}
	sum := Summarize(doc, wordLimit)
	s.Put(doc.FileName, sum)
	return sum
}

// All returns a copy of the fileName -> Summary map.
func (s *Store) All() map[string]Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Summary, len(s.summaries))
	for k, v := range s.summaries {
		out[k] = v
	}
	return out
}

// Len returns the number of summaries stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.summaries)
}

// Save persists the store as a JSON map via write-temp+rename.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.summaries, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return perrors.InternalError("marshal summary store", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return perrors.IOError("write summary store file "+path, err)
	}
	return nil
}

// Load reconstructs a Store from path.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, perrors.IOError("read summary store file "+path, err)
	}

	summaries := make(map[string]Summary)
	if err := json.Unmarshal(data, &summaries); err != nil {
		return nil, perrors.CacheCorrupt("parse summary store file "+path, err)
	}

	return &Store{summaries: summaries}, nil
}
