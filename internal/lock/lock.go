// Package lock implements spec.md §4.2's LockManager: a cross-process
// exclusive lock with stale-lock override and randomized exponential
// backoff retry. Grounded on the teacher's internal/embed/lock.go
// (gofrs/flock wrapping shape) and internal/perrors's retry helper,
// generalized from a single model-download lock to the general-purpose
// cache-build lock spec.md requires.
package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/phazer-schmid/phasergun/internal/perrors"
)

// Options configures Acquire, matching spec.md §4.2's parameter set. No
// defaults are applied here; callers pass the values config.LockConfig
// carries.
type Options struct {
	StaleMs      int
	MaxRetries   int
	MinBackoffMs int
	MaxBackoffMs int
}

func (o Options) staleDuration() time.Duration {
	return time.Duration(o.StaleMs) * time.Millisecond
}

// Lock represents a held exclusive lock on a single path.
type Lock struct {
	path string
	fl   *flock.Flock

	mu       sync.Mutex
	released bool
}

// Acquire creates an exclusive lock file at path. Both an OS-level
// advisory lock (via gofrs/flock, released automatically if the holder
// process dies) and an explicit timestamp written into the lock file body
// guard the lock: a second caller may take over only once the OS lock is
// acquirable or the recorded timestamp is older than opts.StaleMs,
// whichever allows progress first (SPEC_FULL.md §4.2). Retries use
// exponential backoff from MinBackoffMs capped at MaxBackoffMs, each wait
// jittered to 50-100% of the current delay (see perrors.LockRetryConfig).
func Acquire(ctx context.Context, path string, opts Options) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, perrors.IOError(fmt.Sprintf("create lock directory for %s", path), err)
	}

	fl := flock.New(path)
	cfg := perrors.LockRetryConfig(opts.MaxRetries, time.Duration(opts.MinBackoffMs)*time.Millisecond, time.Duration(opts.MaxBackoffMs)*time.Millisecond)

	var lastErr error
	err := perrors.Retry(ctx, cfg, func() error {
		ok, tryErr := fl.TryLock()
		if tryErr != nil {
			lastErr = tryErr
			return tryErr
		}
		if ok {
			return nil
		}

		if isStale(path, opts.staleDuration()) {
			_ = os.Remove(path)
			lastErr = fmt.Errorf("lock at %s is stale, removed", path)
			return lastErr
		}

		lastErr = fmt.Errorf("lock at %s is held by another process", path)
		return lastErr
	})
	if err != nil {
		return nil, perrors.LockAcquisitionError(fmt.Sprintf("acquire lock %s", path), lastErr)
	}

	if err := writeHolderTimestamp(path); err != nil {
		_ = fl.Unlock()
		return nil, err
	}

	return &Lock{path: path, fl: fl}, nil
}

// Release removes the lock file. It is idempotent and safe to call on
// every exit path, including after an error (spec.md §4.2).
func (l *Lock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.released {
		return nil
	}
	l.released = true

	if err := l.fl.Unlock(); err != nil {
		return perrors.IOError(fmt.Sprintf("release lock %s", l.path), err)
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return perrors.IOError(fmt.Sprintf("remove lock file %s", l.path), err)
	}
	return nil
}

// writeHolderTimestamp records the current Unix nanosecond time in the
// lock file body, so a future caller can judge staleness without needing
// the OS lock to fail first (e.g. a holder process stuck on a blocked
// call rather than dead).
func writeHolderTimestamp(path string) error {
	content := strconv.FormatInt(time.Now().UnixNano(), 10)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return perrors.IOError(fmt.Sprintf("write lock timestamp %s", path), err)
	}
	return nil
}

// isStale reports whether the timestamp recorded in the lock file at path
// is older than staleAfter. A missing or unparsable file is treated as
// stale so a crashed holder's lock never blocks forever.
func isStale(path string, staleAfter time.Duration) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return true
	}

	nanos, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return true
	}

	held := time.Unix(0, nanos)
	return time.Since(held) > staleAfter
}
