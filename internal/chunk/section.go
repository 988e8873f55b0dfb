package chunk

import "regexp"

// Header detection is a union of markdown headings and numbered section
// markers, generalizing the teacher's markdown-only header regex
// (internal/chunk/markdown_chunker.go) to spec.md §4.3's requirement that
// procedure documents use either convention interchangeably.
var (
	markdownHeaderRe = regexp.MustCompile(`^#{1,6}\s+\S`)
	numberedHeaderRe = regexp.MustCompile(`^\d+(\.\d+)*\s+\S`)
)

func isHeaderLine(line string) bool {
	trimmed := trimLineEnd(line)
	return markdownHeaderRe.MatchString(trimmed) || numberedHeaderRe.MatchString(trimmed)
}

func trimLineEnd(line string) string {
	n := len(line)
	for n > 0 && (line[n-1] == '\n' || line[n-1] == '\r') {
		n--
	}
	return line[:n]
}

const (
	sectionSoftMin = 2000
	sectionHardMax = 4000
)

// sectionAwareSegments scans text line by line, accumulating into a
// segment until a header is encountered once the segment exceeds
// sectionSoftMin characters (spec.md §4.3: "emit when a header is
// encountered and the accumulated chunk exceeds 2000 chars, starting a new
// chunk at the header line"). If no header is seen and a segment exceeds
// sectionHardMax, it is cut at the next paragraph boundary instead of
// running unbounded. headerCount reports how many header lines were seen,
// so the caller can fall back to overlap-paragraph chunking when it is
// zero.
func sectionAwareSegments(text string) (segments []string, headerCount int) {
	lines := splitLinesKeepEnds(text)

	var buf []byte
	overflowPending := false

	flush := func() {
		if len(buf) > 0 {
			segments = append(segments, string(buf))
			buf = nil
		}
		overflowPending = false
	}

	for _, line := range lines {
		if isHeaderLine(line) {
			headerCount++
			if len(buf) > sectionSoftMin {
				flush()
			}
		}
		buf = append(buf, line...)
		if !isHeaderLine(line) && len(buf) > sectionHardMax {
			overflowPending = true
		}
		if overflowPending && isBlankLine(line) {
			flush()
		}
	}
	flush()

	return segments, headerCount
}
