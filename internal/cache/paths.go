package cache

import (
	"crypto/md5" //nolint:gosec // spec requires an MD5-class hash for the directory-naming projectHash, not for security.
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/phazer-schmid/phasergun/internal/config"
)

// baseDirName is the platform-temp-dir subdirectory spec.md §6's cache
// directory layout lives under.
const baseDirName = "phasergun-cache"

// projectHash is the first 8 hex chars of an MD5 hash of the absolute
// project root path (spec.md §6: "an MD5-class hash"), used to name the
// per-project subdirectories in the cache layout.
func projectHash(absRoot string) string {
	sum := md5.Sum([]byte(absRoot)) //nolint:gosec
	return hex.EncodeToString(sum[:])[:8]
}

func cacheRoot(cfg config.CacheConfig) string {
	if cfg.RootDir != "" {
		return cfg.RootDir
	}
	return filepath.Join(os.TempDir(), baseDirName)
}

func vectorStorePath(cfg config.CacheConfig, hash string) string {
	return filepath.Join(cacheRoot(cfg), "vector-store", hash, "vector-store.json")
}

func sopSummariesPath(cfg config.CacheConfig, hash string) string {
	return filepath.Join(cacheRoot(cfg), "sop-summaries", hash, "sop-summaries.json")
}

func contextSummariesPath(cfg config.CacheConfig, hash string) string {
	return filepath.Join(cacheRoot(cfg), "context-summaries", hash, "context-summaries.json")
}

func metadataPath(cfg config.CacheConfig, hash string) string {
	return filepath.Join(cacheRoot(cfg), "metadata", hash, "cache-metadata.json")
}

func lockFilePath(cfg config.CacheConfig, hash string) string {
	return filepath.Join(cacheRoot(cfg), "locks", hash, "cache-build.lock")
}
