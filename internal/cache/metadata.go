package cache

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/renameio"

	"github.com/phazer-schmid/phasergun/internal/perrors"
)

// Metadata is cache-metadata.json's shape (spec.md §6). Its presence on
// disk, with a matching Fingerprint, implies the other three cache files
// are complete (invariant C1) because it is always written last.
type Metadata struct {
	ProjectPath            string    `json:"projectPath"`
	Fingerprint            string    `json:"fingerprint"`
	VectorStoreFingerprint string    `json:"vectorStoreFingerprint"`
	IndexedAt              time.Time `json:"indexedAt"`
	ModelVersion           string    `json:"modelVersion"`
}

func readMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, perrors.IOError("read cache metadata "+path, err)
	}

	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, perrors.CacheCorrupt("parse cache metadata "+path, err)
	}
	return &m, nil
}

func writeMetadata(path string, m Metadata) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return perrors.InternalError("marshal cache metadata", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return perrors.IOError("write cache metadata "+path, err)
	}
	return nil
}
