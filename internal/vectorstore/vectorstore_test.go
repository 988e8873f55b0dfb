package vectorstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phazer-schmid/phasergun/internal/chunk"
)

func unit(x, y float32) []float32 { return []float32{x, y} }

func TestSearchRanksBySimilarityDescending(t *testing.T) {
	s := New()
	s.AddAll([]Entry{
		{ID: "b", ContentHash: "h1", Category: chunk.CategoryProcedure, Vector: unit(1, 0)},
		{ID: "a", ContentHash: "h2", Category: chunk.CategoryProcedure, Vector: unit(0, 1)},
	})

	results := s.Search(unit(1, 0), 2, nil)
	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].Entry.ID)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-9)
	assert.Equal(t, "a", results[1].Entry.ID)
}

func TestSearchTieBreaksByEntryID(t *testing.T) {
	s := New()
	s.AddAll([]Entry{
		{ID: "zzz", ContentHash: "h1", Vector: unit(1, 0)},
		{ID: "aaa", ContentHash: "h2", Vector: unit(1, 0)},
	})

	results := s.Search(unit(1, 0), 2, nil)
	require.Len(t, results, 2)
	assert.Equal(t, "aaa", results[0].Entry.ID)
	assert.Equal(t, "zzz", results[1].Entry.ID)
}

func TestSearchFiltersByCategory(t *testing.T) {
	s := New()
	s.AddAll([]Entry{
		{ID: "p1", ContentHash: "h1", Category: chunk.CategoryProcedure, Vector: unit(1, 0)},
		{ID: "c1", ContentHash: "h2", Category: chunk.CategoryContext, Vector: unit(1, 0)},
	})

	procCat := chunk.CategoryProcedure
	results := s.Search(unit(1, 0), 10, &procCat)
	require.Len(t, results, 1)
	assert.Equal(t, "p1", results[0].Entry.ID)
}

func TestSearchRespectsTopK(t *testing.T) {
	s := New()
	s.AddAll([]Entry{
		{ID: "a", ContentHash: "h1", Vector: unit(1, 0)},
		{ID: "b", ContentHash: "h2", Vector: unit(0.9, 0.1)},
		{ID: "c", ContentHash: "h3", Vector: unit(0.1, 0.9)},
	})

	results := s.Search(unit(1, 0), 1, nil)
	assert.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Entry.ID)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New()
	s.AddAll([]Entry{
		{ID: "a", ContentHash: "h1", FileName: "SOP-001.md", Vector: unit(1, 0)},
		{ID: "b", ContentHash: "h2", FileName: "SOP-002.md", Vector: unit(0, 1)},
	})

	path := filepath.Join(t.TempDir(), "vectors.json")
	require.NoError(t, s.Save(path, "static-384-v1"))

	loaded, env, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "static-384-v1", env.ModelVersion)
	assert.Equal(t, s.Fingerprint("static-384-v1"), env.Fingerprint)

	entries := loaded.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, "b", entries[1].ID)
}

func TestFingerprintChangesWithContent(t *testing.T) {
	s1 := New()
	s1.Add(Entry{ID: "a", ContentHash: "h1"})

	s2 := New()
	s2.Add(Entry{ID: "a", ContentHash: "h2"})

	assert.NotEqual(t, s1.Fingerprint("v1"), s2.Fingerprint("v1"))
}

func TestFingerprintChangesWithModelVersion(t *testing.T) {
	s := New()
	s.Add(Entry{ID: "a", ContentHash: "h1"})
	assert.NotEqual(t, s.Fingerprint("v1"), s.Fingerprint("v2"))
}
