package fingerprint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFileFingerprintStableAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.md")
	writeFile(t, path, "hello")

	d1, err := FileFingerprint(path)
	require.NoError(t, err)
	d2, err := FileFingerprint(path)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestFileFingerprintChangesWithModTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.md")
	writeFile(t, path, "hello")

	d1, err := FileFingerprint(path)
	require.NoError(t, err)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	d2, err := FileFingerprint(path)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d2)
}

func TestTreeFingerprintMissingRootIsEmptyDigest(t *testing.T) {
	dir := t.TempDir()
	d, err := TreeFingerprint(filepath.Join(dir, "absent"), nil)
	require.NoError(t, err)
	assert.Equal(t, emptyTreeDigest(), d)
}

func TestTreeFingerprintExcludesImmediateChildOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Prompt", "system.md"), "prompt text")
	writeFile(t, filepath.Join(dir, "General", "notes.md"), "general text")

	withExclude, err := TreeFingerprint(dir, []string{"Prompt"})
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(dir, "Prompt")))
	withoutPrompt, err := TreeFingerprint(dir, nil)
	require.NoError(t, err)

	assert.Equal(t, withoutPrompt, withExclude)
}

func TestTreeFingerprintOrderIndependent(t *testing.T) {
	dirA := t.TempDir()
	writeFile(t, filepath.Join(dirA, "b.md"), "B")
	writeFile(t, filepath.Join(dirA, "a.md"), "A")

	dirB := t.TempDir()
	writeFile(t, filepath.Join(dirB, "a.md"), "A")
	writeFile(t, filepath.Join(dirB, "b.md"), "B")

	// Normalize modtimes so only path ordering differs.
	now := time.Now()
	for _, f := range []string{"a.md", "b.md"} {
		require.NoError(t, os.Chtimes(filepath.Join(dirA, f), now, now))
		require.NoError(t, os.Chtimes(filepath.Join(dirB, f), now, now))
	}

	fpA, err := TreeFingerprint(dirA, nil)
	require.NoError(t, err)
	fpB, err := TreeFingerprint(dirB, nil)
	require.NoError(t, err)
	assert.Equal(t, fpA, fpB)
}

func TestProjectFingerprintEmptyProceduresIsValid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Context"), 0o755))
	primary := filepath.Join(dir, "Context", "primary.md")
	writeFile(t, primary, "primary context")

	digest, err := ProjectFingerprint(dir, primary)
	require.NoError(t, err)
	assert.NotEmpty(t, digest)
}

func TestProjectFingerprintChangesWhenProcedureAdded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Context"), 0o755))
	primary := filepath.Join(dir, "Context", "primary.md")
	writeFile(t, primary, "primary context")

	before, err := ProjectFingerprint(dir, primary)
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, "Procedures", "SOP-001.md"), "a new procedure")

	after, err := ProjectFingerprint(dir, primary)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}
