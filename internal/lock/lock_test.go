package lock

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{
		StaleMs:      50,
		MaxRetries:   5,
		MinBackoffMs: 5,
		MaxBackoffMs: 20,
	}
}

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache-build.lock")

	l, err := Acquire(context.Background(), path, testOptions())
	require.NoError(t, err)
	require.FileExists(t, path)

	require.NoError(t, l.Release())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestReleaseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache-build.lock")
	l, err := Acquire(context.Background(), path, testOptions())
	require.NoError(t, err)

	require.NoError(t, l.Release())
	require.NoError(t, l.Release())
}

func TestAcquireOverridesStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache-build.lock")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	// Simulate an abandoned lock: a timestamp far enough in the past to be
	// stale under testOptions' 50ms threshold.
	stale := strconv.FormatInt(time.Now().Add(-time.Hour).UnixNano(), 10)
	require.NoError(t, os.WriteFile(path, []byte(stale), 0o644))

	l, err := Acquire(context.Background(), path, testOptions())
	require.NoError(t, err)
	require.NoError(t, l.Release())
}

func TestAcquireFailsWhenHeldAndNotStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache-build.lock")

	holder, err := Acquire(context.Background(), path, Options{StaleMs: 10_000, MaxRetries: 8, MinBackoffMs: 500, MaxBackoffMs: 3000})
	require.NoError(t, err)
	defer holder.Release()

	_, err = Acquire(context.Background(), path, Options{StaleMs: 10_000, MaxRetries: 2, MinBackoffMs: 5, MaxBackoffMs: 10})
	assert.Error(t, err)
}

func TestAcquireRespectsContextCancellation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache-build.lock")
	holder, err := Acquire(context.Background(), path, Options{StaleMs: 10_000, MaxRetries: 8, MinBackoffMs: 500, MaxBackoffMs: 3000})
	require.NoError(t, err)
	defer holder.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Acquire(ctx, path, Options{StaleMs: 10_000, MaxRetries: 8, MinBackoffMs: 500, MaxBackoffMs: 3000})
	assert.Error(t, err)
}
