// Package fingerprint computes content-change digests over files and
// directory trees so the cache coordinator can detect when a project's
// inputs have changed without re-reading every file's content. Grounded on
// the teacher's internal/index/coordinator.go hashing helpers
// (generateFileID, hashContent, ComputeGitignoreHash's sorted-path
// combination-hash pattern), generalized from gitignore-change-detection
// to the full procedures/context tree spec.md §4.1 describes.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/phazer-schmid/phasergun/internal/perrors"
)

// FileFingerprint combines path, size, and modification time (nanosecond
// precision, or whatever granularity the platform reports) into a stable
// digest (spec.md §4.1's fileFingerprint). It reads no file content, so it
// is cheap enough to call on every file in a large tree.
func FileFingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", perrors.IOError(fmt.Sprintf("stat %s", path), err)
	}
	return fingerprintInfo(path, info), nil
}

func fingerprintInfo(path string, info fs.FileInfo) string {
	input := fmt.Sprintf("%s\x00%d\x00%d", path, info.Size(), info.ModTime().UnixNano())
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// TreeFingerprint walks root recursively, skips any relative path whose
// first path segment matches an entry in excludes (spec.md §4.1's
// "Context/Prompt/" exclusion is an immediate-child-only match, per
// SPEC_FULL.md §9), sorts the remaining files by relative path in byte
// order, and hashes the concatenation of their per-file fingerprints.
//
// A root that does not exist yields the fixed empty-tree digest rather
// than an error: spec.md §4.1 says "a project with no procedures is
// legal."
func TreeFingerprint(root string, excludes []string) (string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return emptyTreeDigest(), nil
	}

	excludeSet := make(map[string]bool, len(excludes))
	for _, e := range excludes {
		excludeSet[e] = true
	}

	var relPaths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		first := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
		if excludeSet[first] {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		relPaths = append(relPaths, rel)
		return nil
	})
	if err != nil {
		return "", perrors.IOError(fmt.Sprintf("walk %s", root), err)
	}

	sort.Strings(relPaths)

	h := sha256.New()
	for _, rel := range relPaths {
		full := filepath.Join(root, rel)
		info, statErr := os.Stat(full)
		if statErr != nil {
			return "", perrors.IOError(fmt.Sprintf("stat %s", full), statErr)
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write([]byte("\x00"))
		h.Write([]byte(fingerprintInfo(rel, info)))
		h.Write([]byte("\n"))
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func emptyTreeDigest() string {
	sum := sha256.Sum256([]byte("empty-tree"))
	return hex.EncodeToString(sum[:])
}

// ProjectFingerprint combines the primary context file's FileFingerprint
// with TreeFingerprint over Procedures/ (no excludes) and Context/ (Prompt/
// excluded), matching spec.md §4.1's projectFingerprint exactly. An empty
// primaryContextPath means the project has no primary context file; an
// empty string then stands in for that file's digest.
func ProjectFingerprint(projectRoot, primaryContextPath string) (string, error) {
	var primary string
	if primaryContextPath != "" {
		fp, err := FileFingerprint(primaryContextPath)
		if err != nil {
			return "", err
		}
		primary = fp
	}

	procedures, err := TreeFingerprint(filepath.Join(projectRoot, "Procedures"), nil)
	if err != nil {
		return "", err
	}

	context, err := TreeFingerprint(filepath.Join(projectRoot, "Context"), []string{"Prompt"})
	if err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write([]byte(primary))
	h.Write([]byte("\x00"))
	h.Write([]byte(procedures))
	h.Write([]byte("\x00"))
	h.Write([]byte(context))
	return hex.EncodeToString(h.Sum(nil)), nil
}
