package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesSpecDefaults(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 60_000, cfg.Lock.StaleMs)
	assert.Equal(t, 500, cfg.Lock.MinBackoffMs)
	assert.Equal(t, 3000, cfg.Lock.MaxBackoffMs)
	assert.Equal(t, 3, cfg.Retrieval.TopKProcedures)
	assert.Equal(t, 2, cfg.Retrieval.TopKContext)
	assert.True(t, cfg.Retrieval.IncludeSummaries)
	assert.Equal(t, 150_000, cfg.Retrieval.MaxTokens)
	assert.Equal(t, 384, cfg.Embeddings.Dimensions)
	assert.Equal(t, 250, cfg.Embeddings.SummaryWords)
	assert.NotEmpty(t, cfg.Embeddings.MemoStorePath)
}

func TestEnvOverrideMemoStorePath(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "custom-memo.db")
	t.Setenv("PHASERGUN_MEMO_STORE_PATH", custom)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, custom, cfg.Embeddings.MemoStorePath)
}

func TestLoadMergesProjectConfigFile(t *testing.T) {
	dir := t.TempDir()
	yamlContent := "retrieval:\n  top_k_procedures: 7\n  max_tokens: 1000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(yamlContent), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Retrieval.TopKProcedures)
	assert.Equal(t, 1000, cfg.Retrieval.MaxTokens)
	// Untouched fields keep their defaults.
	assert.Equal(t, 2, cfg.Retrieval.TopKContext)
}

func TestLoadWithoutConfigFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default().Retrieval, cfg.Retrieval)
}

func TestEnvOverridesCacheEnabled(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CACHE_ENABLED", "false")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.False(t, cfg.Cache.Enabled)
}

func TestEnvOverrideTakesPrecedenceOverFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("retrieval:\n  top_k_context: 9\n"), 0o644))
	t.Setenv("PHASERGUN_TOP_K_CONTEXT", "1")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Retrieval.TopKContext)
}

func TestLockDurationHelpers(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 60000*1_000_000, int(cfg.Lock.StaleDuration()))
}
