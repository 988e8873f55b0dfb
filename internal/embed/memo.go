package embed

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "modernc.org/sqlite"
)

// MemoStore is the on-disk content-addressed embedding memoization store
// spec.md §4.4 requires ("embeddings are memoized on disk, keyed by
// content hash, so re-indexing unchanged chunks never re-embeds them"),
// fronted by an in-memory LRU for the hot path. Grounded on the teacher's
// internal/embed/cached.go (LRU wrapping shape) and internal/store's use
// of modernc.org/sqlite as the pure-Go on-disk backend, generalized from
// an in-process cache to a durable memo table survivng process restarts.
type MemoStore struct {
	db  *sql.DB
	lru *lru.Cache[string, []float32]
}

// OpenMemoStore opens (creating if needed) a sqlite-backed memo store at
// path, fronted by an in-memory LRU of lruSize entries.
func OpenMemoStore(path string, lruSize int) (*MemoStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create memo store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open memo store: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS embeddings (
		content_key  TEXT PRIMARY KEY,
		model_version TEXT NOT NULL,
		vector       BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create embeddings table: %w", err)
	}

	if lruSize <= 0 {
		lruSize = 1000
	}
	cache, err := lru.New[string, []float32](lruSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create memo LRU: %w", err)
	}

	return &MemoStore{db: db, lru: cache}, nil
}

// Get returns the memoized vector for contentKey under modelVersion, if
// any. A vector stored under a different model version is treated as a
// miss (spec.md §9: a model version change invalidates prior vectors).
func (m *MemoStore) Get(contentKey, modelVersion string) ([]float32, bool) {
	cacheKey := contentKey + "\x00" + modelVersion
	if v, ok := m.lru.Get(cacheKey); ok {
		return v, true
	}

	var storedVersion string
	var blob []byte
	err := m.db.QueryRow(
		`SELECT model_version, vector FROM embeddings WHERE content_key = ?`,
		contentKey,
	).Scan(&storedVersion, &blob)
	if err != nil || storedVersion != modelVersion {
		return nil, false
	}

	vec := decodeVector(blob)
	m.lru.Add(cacheKey, vec)
	return vec, true
}

// Put persists vec for contentKey under modelVersion, overwriting any
// prior entry (e.g. one recorded under a stale model version).
func (m *MemoStore) Put(contentKey, modelVersion string, vec []float32) error {
	_, err := m.db.Exec(
		`INSERT INTO embeddings (content_key, model_version, vector) VALUES (?, ?, ?)
		 ON CONFLICT(content_key) DO UPDATE SET model_version = excluded.model_version, vector = excluded.vector`,
		contentKey, modelVersion, encodeVector(vec),
	)
	if err != nil {
		return fmt.Errorf("put memo entry: %w", err)
	}
	m.lru.Add(contentKey+"\x00"+modelVersion, vec)
	return nil
}

// Close closes the underlying database handle.
func (m *MemoStore) Close() error {
	return m.db.Close()
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
