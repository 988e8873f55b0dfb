package chunk

import "strings"

// ChunkDocument splits a document's text into Chunks per spec.md §4.3,
// dispatching on category: procedures use section-aware chunking (falling
// back to overlap-paragraph when the document has no detectable headers),
// context documents always use overlap-paragraph chunking.
func ChunkDocument(in Input, category Category, subfolder ContextSubfolder) []Chunk {
	if strings.TrimSpace(in.Text) == "" {
		return nil
	}

	switch category {
	case CategoryProcedure:
		return chunkProcedure(in)
	default:
		return chunkContext(in, subfolder)
	}
}

func chunkProcedure(in Input) []Chunk {
	segments, headerCount := sectionAwareSegments(in.Text)
	if headerCount == 0 {
		segments = overlapParagraphSegments(in.Text)
	}
	return assemble(in, CategoryProcedure, "", segments)
}

func chunkContext(in Input, subfolder ContextSubfolder) []Chunk {
	segments := overlapParagraphSegments(in.Text)
	return assemble(in, CategoryContext, subfolder, segments)
}
