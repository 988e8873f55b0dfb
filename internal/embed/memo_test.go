package embed

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoStorePutGet(t *testing.T) {
	store := newTestMemoStore(t)
	vec := []float32{0.1, 0.2, 0.3}

	_, ok := store.Get("key1", ModelVersion)
	assert.False(t, ok)

	require.NoError(t, store.Put("key1", ModelVersion, vec))
	got, ok := store.Get("key1", ModelVersion)
	require.True(t, ok)
	assert.Equal(t, vec, got)
}

func TestMemoStoreModelVersionMismatchIsMiss(t *testing.T) {
	store := newTestMemoStore(t)
	require.NoError(t, store.Put("key1", "static-384-v1", []float32{1, 2, 3}))

	_, ok := store.Get("key1", "static-384-v2")
	assert.False(t, ok, "a vector stored under a different model version must not be returned")
}

func TestMemoStoreOverwrite(t *testing.T) {
	store := newTestMemoStore(t)
	require.NoError(t, store.Put("key1", ModelVersion, []float32{1, 0}))
	require.NoError(t, store.Put("key1", ModelVersion, []float32{0, 1}))

	got, ok := store.Get("key1", ModelVersion)
	require.True(t, ok)
	assert.Equal(t, []float32{0, 1}, got)
}

func TestOpenMemoStoreCreatesMissingParentDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "memo.db")

	store, err := OpenMemoStore(path, 10)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put("k", ModelVersion, []float32{1}))
}

func TestMemoStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memo.db")

	s1, err := OpenMemoStore(path, 10)
	require.NoError(t, err)
	require.NoError(t, s1.Put("k", ModelVersion, []float32{9, 8, 7}))
	require.NoError(t, s1.Close())

	s2, err := OpenMemoStore(path, 10)
	require.NoError(t, err)
	defer s2.Close()

	got, ok := s2.Get("k", ModelVersion)
	require.True(t, ok)
	assert.Equal(t, []float32{9, 8, 7}, got)
}
