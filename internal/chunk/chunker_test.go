package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nonWhitespace collapses every run of whitespace in s to a single space,
// so chunk text can be compared with source text without depending on
// exact whitespace.
func nonWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func assertDenseIndices(t *testing.T, chunks []Chunk) {
	t.Helper()
	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex, "chunk %d has index %d", i, c.ChunkIndex)
	}
}

func assertNoEmptyChunks(t *testing.T, chunks []Chunk) {
	t.Helper()
	for _, c := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(c.Text), "chunk %s is whitespace-only", c.ID)
	}
}

func TestSectionAwareSplitsOnHeaders(t *testing.T) {
	text := "## 1. Purpose\n" + strings.Repeat("lorem ipsum dolor sit amet. ", 100) +
		"\n\n## 2. Scope\n" + strings.Repeat("consectetur adipiscing elit. ", 100)

	in := Input{SourcePath: "SOP-001.md", FileName: "SOP-001.md", Text: text}
	chunks := ChunkDocument(in, CategoryProcedure, "")

	require.NotEmpty(t, chunks)
	assertDenseIndices(t, chunks)
	assertNoEmptyChunks(t, chunks)

	assert.True(t, strings.Contains(chunks[0].Text, "1. Purpose"))
	assert.True(t, strings.Contains(chunks[len(chunks)-1].Text, "2. Scope"))

	for _, c := range chunks {
		assert.Equal(t, CategoryProcedure, c.Category)
		assert.Equal(t, "SOP-001.md", c.SourcePath)
	}

	// I1: section-aware segments are a non-overlapping partition, so
	// rejoining every chunk's text must reproduce every non-whitespace
	// character of the original document, none dropped.
	var rejoined strings.Builder
	for _, c := range chunks {
		rejoined.WriteString(c.Text)
	}
	assert.Equal(t, nonWhitespace(text), nonWhitespace(rejoined.String()))
}

func TestSectionAwareFallsBackToOverlapWithoutHeaders(t *testing.T) {
	text := strings.Repeat("plain narrative text with no headings at all. ", 200)
	in := Input{SourcePath: "plain.md", FileName: "plain.md", Text: text}

	chunks := ChunkDocument(in, CategoryProcedure, "")
	require.NotEmpty(t, chunks)
	assertDenseIndices(t, chunks)
	assertNoEmptyChunks(t, chunks)
}

func TestOverlapParagraphChunksContext(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString(strings.Repeat("regulatory context paragraph text. ", 20))
		b.WriteString("\n\n")
	}
	in := Input{SourcePath: "context/General/notes.md", FileName: "notes.md", Text: b.String()}

	chunks := ChunkDocument(in, CategoryContext, SubfolderGeneral)
	require.NotEmpty(t, chunks)
	assertDenseIndices(t, chunks)
	assertNoEmptyChunks(t, chunks)

	for i, c := range chunks {
		assert.Equal(t, CategoryContext, c.Category)
		assert.Equal(t, SubfolderGeneral, c.ContextSubfolder)
		assert.LessOrEqual(t, len(c.Text), overlapHardCap+overlapLen, "chunk %d exceeds hard cap plus seed", i)
	}

	// Consecutive chunks overlap: the seed of chunk N+1 reappears at the
	// tail of chunk N.
	if len(chunks) > 1 {
		tail := chunks[0].Text[len(chunks[0].Text)-50:]
		assert.Contains(t, chunks[1].Text, tail[len(tail)-20:])
	}
}

func TestChunkDocumentEmptyTextYieldsNoChunks(t *testing.T) {
	in := Input{SourcePath: "empty.md", FileName: "empty.md", Text: "   \n\n  "}
	assert.Empty(t, ChunkDocument(in, CategoryProcedure, ""))
	assert.Empty(t, ChunkDocument(in, CategoryContext, SubfolderGeneral))
}

func TestChunkIDsAreStableAndUnique(t *testing.T) {
	text := "## 1. Purpose\n" + strings.Repeat("alpha beta gamma. ", 300)
	in := Input{SourcePath: "SOP-002.md", FileName: "SOP-002.md", Text: text}

	first := ChunkDocument(in, CategoryProcedure, "")
	second := ChunkDocument(in, CategoryProcedure, "")

	require.Equal(t, len(first), len(second))
	seen := map[string]bool{}
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.False(t, seen[first[i].ID], "duplicate chunk ID %s", first[i].ID)
		seen[first[i].ID] = true
	}
}

func TestLargeParagraphEmittedStandalone(t *testing.T) {
	huge := strings.Repeat("x", overlapHardCap+500)
	text := "short lead-in paragraph.\n\n" + huge + "\n\nshort trailing paragraph.\n"
	in := Input{SourcePath: "context/General/huge.md", FileName: "huge.md", Text: text}

	chunks := ChunkDocument(in, CategoryContext, SubfolderGeneral)
	require.NotEmpty(t, chunks)

	found := false
	for _, c := range chunks {
		if strings.Contains(c.Text, huge) {
			found = true
		}
	}
	assert.True(t, found, "oversized paragraph should appear in some chunk")
}
