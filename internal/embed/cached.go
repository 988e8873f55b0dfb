package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// CachedEmbedder wraps an Embedder with the on-disk MemoStore, so that
// re-embedding a chunk whose content hash is already memoized never
// touches the underlying embedding algorithm (spec.md §4.4). Grounded on
// the teacher's internal/embed/cached.go LRU wrapper, generalized to a
// durable backing store.
type CachedEmbedder struct {
	inner Embedder
	memo  *MemoStore
}

// NewCachedEmbedder wraps inner with memo.
func NewCachedEmbedder(inner Embedder, memo *MemoStore) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, memo: memo}
}

func (c *CachedEmbedder) contentKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Embed returns the memoized vector for text if present, otherwise
// computes, memoizes, and returns it.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.contentKey(text)
	if vec, ok := c.memo.Get(key, c.inner.ModelVersion()); ok {
		return vec, nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.memo.Put(key, c.inner.ModelVersion(), vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// EmbedBatch embeds each text, consulting and populating the memo store
// per-text for maximum reuse across partially-overlapping batches.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))
	uncachedIdx := make([]int, 0, len(texts))
	uncachedTexts := make([]string, 0, len(texts))

	for i, text := range texts {
		key := c.contentKey(text)
		if vec, ok := c.memo.Get(key, c.inner.ModelVersion()); ok {
			results[i] = vec
			continue
		}
		uncachedIdx = append(uncachedIdx, i)
		uncachedTexts = append(uncachedTexts, text)
	}

	if len(uncachedTexts) == 0 {
		return results, nil
	}

	computed, err := c.inner.EmbedBatch(ctx, uncachedTexts)
	if err != nil {
		return nil, err
	}

	for j, idx := range uncachedIdx {
		results[idx] = computed[j]
		key := c.contentKey(texts[idx])
		if err := c.memo.Put(key, c.inner.ModelVersion(), computed[j]); err != nil {
			return nil, err
		}
	}

	return results, nil
}

// Dimensions passes through to the inner embedder.
func (c *CachedEmbedder) Dimensions() int { return c.inner.Dimensions() }

// ModelVersion passes through to the inner embedder.
func (c *CachedEmbedder) ModelVersion() string { return c.inner.ModelVersion() }

// Close closes the memo store. The inner embedder has no resources to
// release for the static algorithm, so it is left untouched.
func (c *CachedEmbedder) Close() error {
	return c.memo.Close()
}
