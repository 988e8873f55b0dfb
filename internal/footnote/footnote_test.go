package footnote

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phazer-schmid/phasergun/internal/chunk"
)

func TestAddChunkAssignsSequentialIDs(t *testing.T) {
	tr := New()
	id1 := tr.AddChunk(chunk.CategoryProcedure, "SOP-001.md", 0)
	id2 := tr.AddChunk(chunk.CategoryProcedure, "SOP-002.md", 0)
	assert.Equal(t, 1, id1)
	assert.Equal(t, 2, id2)
}

func TestAddChunkDedups(t *testing.T) {
	tr := New()
	id1 := tr.AddChunk(chunk.CategoryContext, "notes.md", 3)
	id2 := tr.AddChunk(chunk.CategoryContext, "notes.md", 3)
	assert.Equal(t, id1, id2)
}

func TestAddStandardDedups(t *testing.T) {
	tr := New()
	id1 := tr.AddStandard("ISO 13485", "Quality management systems")
	id2 := tr.AddStandard("ISO 13485", "Quality management systems")
	assert.Equal(t, id1, id2)
}

func TestRenderProducesSourcesBlock(t *testing.T) {
	tr := New()
	tr.AddChunk(chunk.CategoryProcedure, "SOP-001.md", 0)
	tr.AddStandard("ISO 13485", "Quality management systems")

	out := tr.Render()
	assert.Contains(t, out, "## Sources")
	assert.Contains(t, out, "[1] Procedure: SOP-001.md (Section 0)")
	assert.Contains(t, out, "[2] Regulatory Standard: ISO 13485")
}

func TestRenderEmptyWhenNoCitations(t *testing.T) {
	tr := New()
	assert.Equal(t, "", tr.Render())
}

func TestResetReturnsCounterToZero(t *testing.T) {
	tr := New()
	tr.AddChunk(chunk.CategoryProcedure, "SOP-001.md", 0)
	tr.Reset()
	id := tr.AddChunk(chunk.CategoryProcedure, "SOP-002.md", 0)
	assert.Equal(t, 1, id)
}
