package chunk

const (
	overlapTarget  = 3000
	overlapHardCap = 4000
	overlapLen     = 400
)

// splitParagraphsPreserving splits text into paragraphs on blank-line
// boundaries, each paragraph retaining its trailing blank line(s) so that
// concatenating the result reproduces text exactly.
func splitParagraphsPreserving(text string) []string {
	lines := splitLinesKeepEnds(text)

	var paragraphs []string
	var buf []byte
	for _, line := range lines {
		buf = append(buf, line...)
		if isBlankLine(line) {
			paragraphs = append(paragraphs, string(buf))
			buf = nil
		}
	}
	if len(buf) > 0 {
		paragraphs = append(paragraphs, string(buf))
	}
	return paragraphs
}

// seedFrom returns the trailing overlapLen characters of prev, truncated
// back to the nearest preceding whitespace so a new chunk never starts
// mid-word (spec.md §4.3's overlap-paragraph algorithm).
func seedFrom(prev string) string {
	if len(prev) <= overlapLen {
		return prev
	}
	start := len(prev) - overlapLen
	for start > 0 && !isSpaceByte(prev[start]) {
		start--
	}
	return prev[start:]
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

// overlapParagraphSegments implements spec.md §4.3's overlap-paragraph
// algorithm: paragraphs are appended to a growing chunk until appending the
// next one would exceed overlapHardCap, at which point the chunk is
// emitted and a new one is seeded with the last overlapLen characters of
// the one just emitted. A paragraph larger than overlapHardCap on its own
// is emitted standalone.
func overlapParagraphSegments(text string) []string {
	paragraphs := splitParagraphsPreserving(text)
	if len(paragraphs) == 0 {
		return nil
	}

	var segments []string
	var current []byte
	var prevEmitted string
	newContent := false

	startNew := func() {
		current = nil
		newContent = false
		if prevEmitted != "" {
			current = append(current, seedFrom(prevEmitted)...)
		}
	}
	emit := func() {
		if newContent {
			segments = append(segments, string(current))
			prevEmitted = string(current)
		}
		startNew()
	}

	for _, p := range paragraphs {
		if len(p) > overlapHardCap {
			emit()
			segments = append(segments, p)
			prevEmitted = p
			startNew()
			continue
		}
		if newContent && len(current)+len(p) > overlapHardCap {
			emit()
		}
		current = append(current, p...)
		newContent = true
	}
	if newContent {
		segments = append(segments, string(current))
	}

	return segments
}
