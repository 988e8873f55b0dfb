package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestListProceduresMissingDirIsEmpty(t *testing.T) {
	files, err := ListProcedures(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestListProceduresSortedByFileName(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, ProceduresSubdir, "SOP-002.md"), "two")
	write(t, filepath.Join(root, ProceduresSubdir, "SOP-001.md"), "one")

	files, err := ListProcedures(root)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "SOP-001.md", files[0].FileName)
	assert.Equal(t, "SOP-002.md", files[1].FileName)
}

func TestListContextExcludesPrompt(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, ContextSubdir, "Prompt", "system.md"), "system prompt")
	write(t, filepath.Join(root, ContextSubdir, "General", "notes.md"), "general notes")

	files, err := ListContext(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "notes.md", files[0].FileName)
	assert.Equal(t, "General", string(files[0].Subfolder))
}

func TestListContextSortedAcrossSubfolders(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, ContextSubdir, "Ongoing", "z-file.md"), "z")
	write(t, filepath.Join(root, ContextSubdir, "Initiation", "a-file.md"), "a")

	files, err := ListContext(root)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a-file.md", files[0].FileName)
	assert.Equal(t, "z-file.md", files[1].FileName)
}
