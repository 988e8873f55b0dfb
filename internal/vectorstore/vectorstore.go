// Package vectorstore implements spec.md §4.5's VectorStore: an
// insertion-ordered, exact (non-approximate) cosine-similarity search over
// embedded chunks, persisted as a JSON envelope via atomic
// write-temp+rename. Grounded on the teacher's internal/index package for
// the on-disk JSON envelope shape, deliberately NOT using the teacher's
// coder/hnsw approximate index: spec.md §8's determinism property requires
// an exact, reproducible ranking that an ANN index cannot guarantee.
package vectorstore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/renameio"

	"github.com/phazer-schmid/phasergun/internal/chunk"
	"github.com/phazer-schmid/phasergun/internal/perrors"
)

// Entry is a single embedded, retrievable chunk (spec.md §3's VectorEntry).
type Entry struct {
	ID               string                 `json:"id"`
	SourcePath       string                 `json:"source_path"`
	FileName         string                 `json:"file_name"`
	Category         chunk.Category         `json:"category"`
	ContextSubfolder chunk.ContextSubfolder `json:"context_subfolder,omitempty"`
	ChunkIndex       int                    `json:"chunk_index"`
	ContentHash      string                 `json:"content_hash"`
	Text             string                 `json:"text"`
	Vector           []float32              `json:"vector"`
}

// SearchResult pairs an Entry with its similarity to the query vector.
type SearchResult struct {
	Entry      Entry
	Similarity float64
}

// Envelope is the on-disk persisted form spec.md §4.5 names literally.
type Envelope struct {
	Entries      []Entry   `json:"entries"`
	Fingerprint  string    `json:"fingerprint"`
	ModelVersion string    `json:"model_version"`
	BuiltAt      time.Time `json:"built_at"`
}

// Store is an in-memory, insertion-ordered collection of embedded chunks.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// Add appends entry, preserving insertion order.
func (s *Store) Add(entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

// AddAll appends entries in order; equivalent to looped Add.
func (s *Store) AddAll(entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
}

// Entries returns a copy of the stored entries in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len reports how many entries are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Search computes cosine similarity (a plain dot product, since every
// stored and query vector is L2-normalized) between queryVec and every
// entry matching categoryFilter (nil means all categories), and returns
// the top topK ranked by similarity descending, with ties within 1e-10
// broken by byte-lexicographic entry ID ascending (spec.md §4.5). This is
// an exact linear scan, not an approximate index: the tie-break rule only
// makes sense, and only produces a reproducible order, over an exhaustive
// comparison.
func (s *Store) Search(queryVec []float32, topK int, categoryFilter *chunk.Category) []SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]SearchResult, 0, len(s.entries))
	for _, e := range s.entries {
		if categoryFilter != nil && e.Category != *categoryFilter {
			continue
		}
		results = append(results, SearchResult{Entry: e, Similarity: cosineSimilarity(queryVec, e.Vector)})
	}

	sort.Slice(results, func(i, j int) bool {
		diff := results[i].Similarity - results[j].Similarity
		if diff < 0 {
			diff = -diff
		}
		if diff < 1e-10 {
			return results[i].Entry.ID < results[j].Entry.ID
		}
		return results[i].Similarity > results[j].Similarity
	})

	if topK >= 0 && topK < len(results) {
		results = results[:topK]
	}
	return results
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// Fingerprint hashes the concatenated ContentHash of every entry in
// insertion order together with modelVersion (spec.md §4.5), letting a
// caller detect whether a persisted store's content matches what the
// current project would rebuild.
func (s *Store) Fingerprint(modelVersion string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fingerprintLocked(modelVersion)
}

func (s *Store) fingerprintLocked(modelVersion string) string {
	h := sha256.New()
	for _, e := range s.entries {
		h.Write([]byte(e.ContentHash))
		h.Write([]byte{0})
	}
	h.Write([]byte(modelVersion))
	return hex.EncodeToString(h.Sum(nil))
}

// Save writes the store as a JSON envelope to path using write-temp+rename
// so readers never observe a partially written file (spec.md §5).
func (s *Store) Save(path, modelVersion string) error {
	s.mu.RLock()
	env := Envelope{
		Entries:      append([]Entry{}, s.entries...),
		Fingerprint:  s.fingerprintLocked(modelVersion),
		ModelVersion: modelVersion,
		BuiltAt:      time.Now().UTC(),
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return perrors.InternalError("marshal vector store envelope", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return perrors.IOError("write vector store file "+path, err)
	}
	return nil
}

// Load reconstructs a Store from path; insertion order is file order.
func Load(path string) (*Store, Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Envelope{}, perrors.IOError("read vector store file "+path, err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, Envelope{}, perrors.CacheCorrupt("parse vector store file "+path, err)
	}

	store := New()
	store.entries = env.Entries
	return store, env, nil
}
