// Package embed implements spec.md §4.4's Embedder: a deterministic,
// offline text embedding step with an on-disk content-addressed memo store
// fronted by an in-memory LRU, grounded on the teacher's internal/embed
// package (static.go's hash-based vector generation, cached.go's LRU
// wrapping), retargeted from model-backed embedders to a single static
// algorithm at spec.md's required dimension.
package embed

import (
	"context"
	"math"
)

// Dimensions is the embedding dimension spec.md §3/§9 fixes at 384,
// distinct from the teacher's 256/768 static embedders so that a cache
// built under one model version is never silently compared against
// another (spec.md §9's portability note).
const Dimensions = 384

// ModelVersion identifies the embedding algorithm and dimension together,
// stored alongside every persisted vector and memo entry (spec.md §3's
// modelVersion field) so a change to this constant invalidates stale
// vectors instead of silently mixing incompatible embeddings. The
// embeddings model_version config field does not affect it.
const ModelVersion = "static-384-v1"

// Embedder generates vector embeddings for text. Embed and EmbedBatch are
// deterministic and side-effect free: same text in, same vector out,
// regardless of call order (spec.md §4.4's determinism requirement).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelVersion() string
}

// normalizeVector L2-normalizes v in place semantics (returns a new
// slice), matching the teacher's normalizeVector in internal/embed/types.go.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}
