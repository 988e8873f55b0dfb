package phasergun

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phazer-schmid/phasergun/internal/config"
)

func TestNewAndGenerateEndToEnd(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Procedures"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Procedures", "SOP-001.md"), []byte("# Intake\n\nReceive the returned device.\n"), 0o644))

	cfg := config.Default()
	cfg.Cache.RootDir = t.TempDir()
	cfg.Logging.FilePath = filepath.Join(t.TempDir(), "phasergun.log")
	cfg.Embeddings.MemoStorePath = filepath.Join(t.TempDir(), "memo.db")

	svc, err := New(root, WithConfig(cfg))
	require.NoError(t, err)
	defer svc.Close()

	out, err := svc.Generate(context.Background(), root, "", "Summarize the intake procedure.")
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Status)
}
