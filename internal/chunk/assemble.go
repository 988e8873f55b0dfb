package chunk

import "strings"

// assemble turns raw text segments (each possibly carrying leading/trailing
// whitespace-only material) into the final dense, ID-bearing Chunk slice.
// Whitespace-only segments are merged into a neighbor rather than emitted
// standalone, satisfying I2 ("no chunk is empty") while still covering
// their characters via the neighbor, per spec.md §4.3's closing note.
func assemble(in Input, category Category, subfolder ContextSubfolder, segments []string) []Chunk {
	merged := mergeWhitespaceOnly(segments)

	chunks := make([]Chunk, 0, len(merged))
	idx := 0
	for _, seg := range merged {
		if seg == "" {
			continue
		}
		chunks = append(chunks, newChunk(in, category, subfolder, idx, seg))
		idx++
	}
	return chunks
}

// mergeWhitespaceOnly folds any segment that is entirely whitespace into an
// adjacent real segment: it is appended to the previous real segment when
// one exists, otherwise prefixed onto the next one.
func mergeWhitespaceOnly(segments []string) []string {
	out := make([]string, 0, len(segments))
	pendingPrefix := ""

	for _, seg := range segments {
		if seg != "" && strings.TrimSpace(seg) == "" {
			if len(out) > 0 {
				out[len(out)-1] += seg
			} else {
				pendingPrefix += seg
			}
			continue
		}
		out = append(out, pendingPrefix+seg)
		pendingPrefix = ""
	}

	if pendingPrefix != "" {
		if len(out) > 0 {
			out[len(out)-1] += pendingPrefix
		} else {
			out = append(out, pendingPrefix)
		}
	}

	return out
}

// splitLinesKeepEnds splits text into lines, each retaining its trailing
// line terminator so that concatenating the result reproduces text
// exactly.
func splitLinesKeepEnds(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func isBlankLine(line string) bool {
	return strings.TrimSpace(line) == ""
}
